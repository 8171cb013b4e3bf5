package api

import (
	"fmt"
	"strings"
)

// Level is the severity attached to a log entry. The empty Level means "no
// filter" when used in a query.
type Level string

const (
	LevelError Level = "ERROR"
	LevelWarn  Level = "WARN"
	LevelInfo  Level = "INFO"
	LevelDebug Level = "DEBUG"
)

// Levels lists the filterable levels from most to least severe.
var Levels = []Level{LevelError, LevelWarn, LevelInfo, LevelDebug}

// ParseLevel accepts any casing plus the WARNING alias. Empty and "all" yield
// the empty Level.
func ParseLevel(value string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "ALL":
		return "", nil
	case "ERROR":
		return LevelError, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "INFO":
		return LevelInfo, nil
	case "DEBUG":
		return LevelDebug, nil
	default:
		return "", fmt.Errorf("unknown log level %q (want one of error, warn, info, debug)", value)
	}
}

// Severity orders levels; higher is more severe. Unknown levels rank lowest.
func (l Level) Severity() int {
	switch normalizeLevel(l) {
	case LevelError:
		return 4
	case LevelWarn:
		return 3
	case LevelInfo:
		return 2
	case LevelDebug:
		return 1
	default:
		return 0
	}
}

// Next cycles through "no filter" and each level in severity order.
func (l Level) Next() Level {
	if l == "" {
		return Levels[0]
	}
	for i, candidate := range Levels {
		if candidate == l {
			if i+1 < len(Levels) {
				return Levels[i+1]
			}
			return ""
		}
	}
	return ""
}

// Label renders the level for display, using "ALL" for the empty filter.
func (l Level) Label() string {
	if l == "" {
		return "ALL"
	}
	return string(l)
}

func normalizeLevel(l Level) Level {
	upper := Level(strings.ToUpper(strings.TrimSpace(string(l))))
	if upper == "WARNING" {
		return LevelWarn
	}
	return upper
}
