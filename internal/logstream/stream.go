package logstream

import (
	"context"
	"fmt"

	"slotwatch/internal/api"
	"slotwatch/internal/logsync"
)

// Options controls stream behavior.
type Options struct {
	// Follow keeps tailing after the snapshot until ctx ends.
	Follow bool
}

// Handlers receive stream output. Nil handlers are skipped.
type Handlers struct {
	Entry func(api.LogEntry)
	// Error is called once per distinct fetch failure while following.
	Error func(error)
	// Status is called when the producer's reported status changes.
	Status func(api.StreamMetadata)
}

// Source is the slice of a sync session the stream drives.
type Source interface {
	Refresh(ctx context.Context) error
	StartTail() error
	View() logsync.View
	Updates() <-chan struct{}
}

// Stream snapshots the session and emits every entry, then with Follow keeps
// emitting entries newer than the last one printed. Late entries older than
// that point are merged into the session but not re-printed. It returns true
// when at least one entry was emitted. Without Follow a failed snapshot is
// returned as the error; with Follow failures go to Handlers.Error and the
// stream keeps polling.
func Stream(ctx context.Context, src Source, opts Options, h Handlers) (bool, error) {
	if err := src.Refresh(ctx); err != nil {
		return false, err
	}
	view := src.View()

	e := emitter{handlers: h}
	if view.Err != nil && !opts.Follow {
		return false, fmt.Errorf("snapshot: %w", view.Err)
	}
	e.observe(view)

	if !opts.Follow {
		return e.printed, nil
	}
	if err := src.StartTail(); err != nil {
		return e.printed, err
	}
	for {
		select {
		case <-ctx.Done():
			return e.printed, nil
		case <-src.Updates():
			e.observe(src.View())
		}
	}
}

type emitter struct {
	handlers  Handlers
	printed   bool
	last      string
	hasLast   bool
	lastErr   string
	status    api.StreamStatus
	hasStatus bool
}

func (e *emitter) observe(view logsync.View) {
	for _, entry := range view.Entries {
		if e.hasLast && logsync.CompareTimestamps(entry.Timestamp, e.last) <= 0 {
			continue
		}
		if e.handlers.Entry != nil {
			e.handlers.Entry(entry)
		}
		e.last = entry.Timestamp
		e.hasLast = true
		e.printed = true
	}

	switch {
	case view.Err == nil:
		e.lastErr = ""
	case view.Err.Error() != e.lastErr:
		e.lastErr = view.Err.Error()
		if e.handlers.Error != nil {
			e.handlers.Error(view.Err)
		}
	}

	if view.Metadata != nil && (!e.hasStatus || view.Metadata.Status != e.status) {
		if e.hasStatus && e.handlers.Status != nil {
			e.handlers.Status(*view.Metadata)
		}
		e.status = view.Metadata.Status
		e.hasStatus = true
	}
}
