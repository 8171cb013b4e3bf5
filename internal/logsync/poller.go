package logsync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"slotwatch/internal/api"
	"slotwatch/internal/logging"
)

// DefaultPollInterval is the tail cadence when none is configured.
const DefaultPollInterval = 2 * time.Second

// BatchFunc receives a successful tail fetch tagged with its generation.
type BatchFunc func(gen uint64, resp api.LogsResponse)

// ErrorFunc receives a failed tail fetch tagged with its generation.
type ErrorFunc func(gen uint64, err error)

// TailPoller repeatedly fetches entries at or after its cursor. Each Start
// begins a new generation; Stop invalidates it without waiting for an
// in-flight request. A run never fetches while the previous run is still
// inside a request.
type TailPoller struct {
	fetcher  Fetcher
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	cursor Cursor
	gen    atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTailPoller(fetcher Fetcher, interval, timeout time.Duration, logger *slog.Logger) *TailPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &TailPoller{fetcher: fetcher, interval: interval, timeout: timeout, logger: logger}
}

// Start launches a polling run: one fetch as soon as the previous run has
// exited and ready is closed, then one per interval until ctx ends or Stop is
// called. A nil ready does not delay the run. A run already in progress is
// stopped first. The returned generation identifies results of this run.
func (p *TailPoller) Start(ctx context.Context, desc Descriptor, ready <-chan struct{}, onBatch BatchFunc, onError ErrorFunc) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	previous := p.done
	gen := p.gen.Add(1)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	go p.run(runCtx, gen, desc, []<-chan struct{}{previous, ready}, onBatch, onError, done)
	return gen
}

// Stop ends the current run. Results still in flight will fail Current.
func (p *TailPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	p.gen.Add(1)
}

// Running reports whether a run is active.
func (p *TailPoller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Current reports whether gen belongs to the active run.
func (p *TailPoller) Current(gen uint64) bool {
	return p.gen.Load() == gen
}

// Generation returns the latest generation number.
func (p *TailPoller) Generation() uint64 {
	return p.gen.Load()
}

// Done is closed when the most recently started run's goroutine exits.
func (p *TailPoller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return p.done
}

// Cursor exposes the poller's cursor so a snapshot can seed it.
func (p *TailPoller) Cursor() *Cursor {
	return &p.cursor
}

// Advance moves the cursor for an accepted batch.
func (p *TailPoller) Advance(entries []api.LogEntry) bool {
	return p.cursor.Advance(entries)
}

func (p *TailPoller) run(ctx context.Context, gen uint64, desc Descriptor, waits []<-chan struct{}, onBatch BatchFunc, onError ErrorFunc, done chan struct{}) {
	defer close(done)
	if awaitAll(ctx, waits...) != nil {
		return
	}
	logger := p.logger.With(logging.Uint64(logging.FieldGeneration, gen))
	logger.Debug("tail poller started", logging.Duration("interval", p.interval))
	defer logger.Debug("tail poller stopped")

	p.poll(ctx, gen, desc, onBatch, onError)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, gen, desc, onBatch, onError)
		}
	}
}

func (p *TailPoller) poll(ctx context.Context, gen uint64, desc Descriptor, onBatch BatchFunc, onError ErrorFunc) {
	if ctx.Err() != nil || !p.Current(gen) {
		return
	}
	since, _ := p.cursor.Value()

	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	resp, err := p.fetcher.Fetch(fetchCtx, desc.Query(since))
	cancel()

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		onError(gen, classifyFetchError(err, desc.StreamID))
		return
	}
	onBatch(gen, resp)
}

// awaitAll blocks until every non-nil channel is closed or ctx ends.
func awaitAll(ctx context.Context, chans ...<-chan struct{}) error {
	for _, ch := range chans {
		if ch == nil {
			continue
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
