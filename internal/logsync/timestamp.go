package logsync

import (
	"strings"
	"time"
)

// stamp caches the parsed form of a timestamp for ordering. Entries whose
// timestamp is not RFC 3339 sort after all parseable ones, by raw string.
type stamp struct {
	raw string
	at  time.Time
	ok  bool
}

func parseStamp(raw string) stamp {
	at, err := time.Parse(time.RFC3339Nano, raw)
	return stamp{raw: raw, at: at, ok: err == nil}
}

func (a stamp) compare(b stamp) int {
	switch {
	case a.ok && b.ok:
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return strings.Compare(a.raw, b.raw)
	case a.ok:
		return -1
	case b.ok:
		return 1
	default:
		return strings.Compare(a.raw, b.raw)
	}
}

// CompareTimestamps orders two entry timestamps the way the accumulator does.
func CompareTimestamps(a, b string) int {
	return parseStamp(a).compare(parseStamp(b))
}
