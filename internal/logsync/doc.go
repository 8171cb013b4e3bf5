// Package logsync keeps a local, ordered, duplicate-free copy of a remote log
// stream that the server only exposes through bounded queries.
//
// A Session combines two acquisition strategies over one Accumulator:
//
//   - Refresh performs a one-shot snapshot of the newest LineCap entries and
//     replaces the accumulated sequence.
//   - StartTail runs a TailPoller that fetches entries at or after the cursor
//     (the newest timestamp seen) on a fixed interval and merges them.
//
// Only one strategy is active at a time. Every acquisition carries a
// generation; results that arrive after a mode change, a descriptor change, or
// Close are discarded, so consumers never observe a stale or partial merge.
// Fetch failures never escape as return values: they are recorded on the View
// and the next successful fetch clears them.
//
// Entries are keyed by their exact timestamp string. The sequence is bounded
// by MaxEntries; the oldest entries are evicted first.
package logsync
