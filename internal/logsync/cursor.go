package logsync

import (
	"sync"

	"slotwatch/internal/api"
)

// Cursor remembers the newest timestamp observed by tail fetches. Advance
// never moves it backwards.
type Cursor struct {
	mu  sync.Mutex
	set bool
	ts  stamp
}

// Value returns the cursor timestamp and whether one is set.
func (c *Cursor) Value() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ts.raw, c.set
}

// Advance moves the cursor to the newest timestamp in entries when that is
// newer than the current value. It reports whether the cursor moved.
func (c *Cursor) Advance(entries []api.LogEntry) bool {
	if len(entries) == 0 {
		return false
	}
	newest := parseStamp(entries[0].Timestamp)
	for _, entry := range entries[1:] {
		if candidate := parseStamp(entry.Timestamp); candidate.compare(newest) > 0 {
			newest = candidate
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set && newest.compare(c.ts) <= 0 {
		return false
	}
	c.ts = newest
	c.set = true
	return true
}

// Seed installs ts as the cursor, typically the newest snapshot entry. An
// empty ts clears the cursor.
func (c *Cursor) Seed(ts string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts == "" {
		c.ts = stamp{}
		c.set = false
		return
	}
	c.ts = parseStamp(ts)
	c.set = true
}

// Reset clears the cursor.
func (c *Cursor) Reset() {
	c.Seed("")
}
