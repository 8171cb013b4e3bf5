// Package api defines wire-format types for the remote log query endpoint
// and the JSON emitted by slotwatch commands.
//
// # Key Types
//
// LogEntry: one immutable log line (timestamp, level, message, source).
//
// StreamMetadata: descriptive snapshot of the producing worker. It is always
// replaced wholesale, never merged.
//
// LogQuery: the three knobs the endpoint accepts (lines, level, since).
//
// LogsResponse/StreamsResponse: response envelopes for a single stream and for
// the stream summary listing.
//
// # Design Notes
//
// JSON tags are snake_case to match the control plane that serves the
// endpoint. Timestamps stay strings on the wire; the sync engine parses them
// only for ordering so the exact server representation remains the dedup key.
package api
