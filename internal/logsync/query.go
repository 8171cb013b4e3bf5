package logsync

import (
	"errors"
	"fmt"
	"strings"

	"slotwatch/internal/api"
)

// DefaultLineCap is used when a filter asks for zero or fewer lines.
const DefaultLineCap = 500

// Filters is the consumer-facing selection of what to show.
type Filters struct {
	StreamID string
	Level    string
	Lines    int
}

// Descriptor identifies one acquisition target. It is comparable; any change
// of value resets a Session.
type Descriptor struct {
	StreamID string
	Level    api.Level
	LineCap  int
}

// BuildDescriptor maps filters to a descriptor. It performs no I/O and never
// fails: an unknown level means no level filter and a non-positive line count
// falls back to DefaultLineCap.
func BuildDescriptor(f Filters) Descriptor {
	level, err := api.ParseLevel(f.Level)
	if err != nil {
		level = ""
	}
	lines := f.Lines
	if lines <= 0 {
		lines = DefaultLineCap
	}
	return Descriptor{
		StreamID: strings.TrimSpace(f.StreamID),
		Level:    level,
		LineCap:  lines,
	}
}

// Validate reports descriptors that cannot be fetched.
func (d Descriptor) Validate() error {
	if d.StreamID == "" {
		return errors.New("stream id is required")
	}
	if d.LineCap <= 0 {
		return fmt.Errorf("line cap must be positive, got %d", d.LineCap)
	}
	return nil
}

// Query renders the endpoint parameters. An empty since requests the newest
// LineCap entries.
func (d Descriptor) Query(since string) api.LogQuery {
	return api.LogQuery{
		StreamID: d.StreamID,
		Lines:    d.LineCap,
		Level:    d.Level,
		Since:    since,
	}
}

// WithLevel returns a copy of d filtered to level.
func (d Descriptor) WithLevel(level api.Level) Descriptor {
	d.Level = level
	return d
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s level=%s lines=%d", d.StreamID, d.Level.Label(), d.LineCap)
}
