package logsync

import (
	"slices"

	"slotwatch/internal/api"
)

// DefaultMaxEntries bounds the accumulated sequence when no limit is given.
const DefaultMaxEntries = 5000

type record struct {
	entry api.LogEntry
	ts    stamp
}

func compareRecords(a, b record) int {
	return a.ts.compare(b.ts)
}

// Accumulator holds the ordered, duplicate-free sequence for one descriptor.
// It is not safe for concurrent use; Session serialises access.
type Accumulator struct {
	records []record
	seen    map[string]struct{}
	max     int
}

// NewAccumulator returns an empty accumulator bounded to maxEntries.
func NewAccumulator(maxEntries int) *Accumulator {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Accumulator{seen: make(map[string]struct{}), max: maxEntries}
}

// Reset discards every entry.
func (a *Accumulator) Reset() {
	clear(a.records)
	a.records = a.records[:0]
	a.seen = make(map[string]struct{})
}

// Replace discards the current sequence and installs entries sorted by
// timestamp, keeping the first occurrence of each timestamp.
func (a *Accumulator) Replace(entries []api.LogEntry) {
	records := make([]record, 0, len(entries))
	for _, entry := range entries {
		records = append(records, record{entry: entry, ts: parseStamp(entry.Timestamp)})
	}
	slices.SortStableFunc(records, compareRecords)

	a.seen = make(map[string]struct{}, len(records))
	kept := records[:0]
	for _, r := range records {
		if _, dup := a.seen[r.entry.Timestamp]; dup {
			continue
		}
		a.seen[r.entry.Timestamp] = struct{}{}
		kept = append(kept, r)
	}
	a.records = kept
	a.evict()
}

// Merge appends entries whose timestamps have not been seen and returns how
// many were added. The sequence is re-sorted only when an added entry lands
// before the current tail.
func (a *Accumulator) Merge(entries []api.LogEntry) int {
	added := 0
	unordered := false
	for _, entry := range entries {
		if _, dup := a.seen[entry.Timestamp]; dup {
			continue
		}
		a.seen[entry.Timestamp] = struct{}{}
		r := record{entry: entry, ts: parseStamp(entry.Timestamp)}
		if n := len(a.records); n > 0 && compareRecords(r, a.records[n-1]) < 0 {
			unordered = true
		}
		a.records = append(a.records, r)
		added++
	}
	if unordered {
		slices.SortStableFunc(a.records, compareRecords)
	}
	if added > 0 {
		a.evict()
	}
	return added
}

// evict drops the oldest entries beyond the bound and forgets their keys.
func (a *Accumulator) evict() {
	excess := len(a.records) - a.max
	if excess <= 0 {
		return
	}
	for _, r := range a.records[:excess] {
		delete(a.seen, r.entry.Timestamp)
	}
	n := copy(a.records, a.records[excess:])
	clear(a.records[n:])
	a.records = a.records[:n]
}

// Entries returns a copy of the sequence.
func (a *Accumulator) Entries() []api.LogEntry {
	out := make([]api.LogEntry, len(a.records))
	for i, r := range a.records {
		out[i] = r.entry
	}
	return out
}

func (a *Accumulator) Len() int { return len(a.records) }

// Last returns the newest entry.
func (a *Accumulator) Last() (api.LogEntry, bool) {
	if len(a.records) == 0 {
		return api.LogEntry{}, false
	}
	return a.records[len(a.records)-1].entry, true
}

// Contains reports whether an entry with this exact timestamp is held.
func (a *Accumulator) Contains(timestamp string) bool {
	_, ok := a.seen[timestamp]
	return ok
}
