package logsync

import (
	"context"
	"errors"
	"time"

	"slotwatch/internal/api"
	"slotwatch/internal/logs"
)

// DefaultFetchTimeout bounds a single request when no timeout is configured.
const DefaultFetchTimeout = 15 * time.Second

// Fetcher performs one bounded query against the log endpoint.
// *logs.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, q api.LogQuery) (api.LogsResponse, error)
}

// Snapshot is the result of a one-shot fetch.
type Snapshot struct {
	Metadata api.StreamMetadata
	Entries  []api.LogEntry
}

// SnapshotFetcher retrieves the newest LineCap entries for a descriptor.
type SnapshotFetcher struct {
	fetcher Fetcher
	timeout time.Duration
}

func NewSnapshotFetcher(fetcher Fetcher, timeout time.Duration) *SnapshotFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &SnapshotFetcher{fetcher: fetcher, timeout: timeout}
}

// Fetch issues a query without since. Errors are always tagged with one of
// the logs marker errors.
func (f *SnapshotFetcher) Fetch(ctx context.Context, desc Descriptor) (Snapshot, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.fetcher.Fetch(fetchCtx, desc.Query(""))
	if err != nil {
		return Snapshot{}, classifyFetchError(err, desc.StreamID)
	}
	if resp.Metadata == nil {
		return Snapshot{}, &logs.FetchError{
			Kind:      logs.ErrMalformedResponse,
			Operation: "snapshot",
			StreamID:  desc.StreamID,
			Err:       errors.New("response has no metadata"),
		}
	}
	entries := resp.Logs
	if entries == nil {
		entries = []api.LogEntry{}
	}
	return Snapshot{Metadata: *resp.Metadata, Entries: entries}, nil
}

// classifyFetchError guarantees the error taxonomy for fetchers that do not
// produce logs.FetchError themselves.
func classifyFetchError(err error, streamID string) error {
	if logs.Kind(err) != nil {
		return err
	}
	kind := logs.ErrTransport
	if errors.Is(err, context.DeadlineExceeded) {
		kind = logs.ErrTimeout
	}
	return &logs.FetchError{Kind: kind, Operation: "fetch logs", StreamID: streamID, Err: err}
}
