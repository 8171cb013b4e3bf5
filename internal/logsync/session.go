package logsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"slotwatch/internal/api"
	"slotwatch/internal/logging"
	"slotwatch/internal/logs"
)

var (
	ErrSessionNotOpen    = errors.New("log sync session not open")
	ErrSessionClosed     = errors.New("log sync session closed")
	ErrInvalidDescriptor = errors.New("invalid descriptor")
)

// Mode is the acquisition strategy a Session is running.
type Mode int

const (
	ModeIdle Mode = iota
	ModeSnapshot
	ModeTailing
)

func (m Mode) String() string {
	switch m {
	case ModeSnapshot:
		return "snapshot"
	case ModeTailing:
		return "tailing"
	default:
		return "idle"
	}
}

// Options tunes a Session. Zero values select the package defaults.
type Options struct {
	PollInterval time.Duration
	FetchTimeout time.Duration
	MaxEntries   int
	Logger       *slog.Logger
}

// View is a point-in-time copy of a Session's state. Revision increases with
// every visible change.
type View struct {
	SessionID  string
	Descriptor Descriptor
	Mode       Mode
	Entries    []api.LogEntry
	Metadata   *api.StreamMetadata
	Cursor     string
	HasCursor  bool
	Err        error
	Revision   uint64
}

type sessionState int

const (
	stateNew sessionState = iota
	stateOpen
	stateClosed
)

// Session owns the accumulated sequence for one descriptor at a time and
// arbitrates between snapshot and tail acquisition.
type Session struct {
	id        string
	logger    *slog.Logger
	snapshots *SnapshotFetcher
	poller    *TailPoller

	updates chan struct{}
	done    chan struct{}

	mu         sync.Mutex
	state      sessionState
	ctx        context.Context
	cancel     context.CancelFunc
	desc       Descriptor
	mode       Mode
	acc        *Accumulator
	meta       *api.StreamMetadata
	lastErr    error
	epoch      uint64
	snapCancel context.CancelFunc
	snapDone   chan struct{}
	revision   uint64
}

// NewSession builds an unopened session that fetches through fetcher.
func NewSession(fetcher Fetcher, opts Options) *Session {
	id := uuid.NewString()
	logger := logging.NewComponentLogger(opts.Logger, "logsync").With(logging.String(logging.FieldSessionID, id))
	return &Session{
		id:        id,
		logger:    logger,
		snapshots: NewSnapshotFetcher(fetcher, opts.FetchTimeout),
		poller:    NewTailPoller(fetcher, opts.PollInterval, opts.FetchTimeout, logger),
		updates:   make(chan struct{}, 1),
		done:      make(chan struct{}),
		acc:       NewAccumulator(opts.MaxEntries),
	}
}

// ID returns the session identifier used in diagnostics.
func (s *Session) ID() string { return s.id }

// Updates signals after every visible change. Signals coalesce; read View for
// the current state.
func (s *Session) Updates() <-chan struct{} { return s.updates }

// Done is closed by Close.
func (s *Session) Done() <-chan struct{} { return s.done }

// Open activates the session for desc. Background work is bound to ctx as
// well as to Close. Opening an open session behaves like SetDescriptor.
func (s *Session) Open(ctx context.Context, desc Descriptor) error {
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	s.mu.Lock()
	switch s.state {
	case stateClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	case stateOpen:
		s.mu.Unlock()
		return s.SetDescriptor(desc)
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.state = stateOpen
	s.desc = desc
	s.mode = ModeIdle
	s.touchLocked()
	logger := s.logLocked()
	s.mu.Unlock()

	logger.Debug("session opened", logging.String("descriptor", desc.String()))
	s.notify()
	return nil
}

// SetDescriptor switches the session to a new target. A different descriptor
// stops any acquisition and discards the sequence, cursor, metadata, and last
// error; the session returns to idle. An equal descriptor is a no-op.
func (s *Session) SetDescriptor(desc Descriptor) error {
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if desc == s.desc {
		s.mu.Unlock()
		return nil
	}
	previous := s.desc
	s.resetLocked()
	s.desc = desc
	s.touchLocked()
	logger := s.logLocked()
	s.mu.Unlock()

	logger.Info("descriptor changed", logging.String("previous", previous.String()), logging.String("descriptor", desc.String()))
	s.notify()
	return nil
}

// Descriptor returns the active descriptor.
func (s *Session) Descriptor() Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desc
}

// Refresh fetches a snapshot and replaces the sequence. Tailing is stopped
// first, and the snapshot request is not sent until any earlier request has
// returned. It blocks until the fetch finishes, is superseded, or ctx ends; a
// fetch failure is recorded on the View, not returned. Only lifecycle errors
// and the caller's own cancellation are returned.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.mode == ModeTailing {
		s.poller.Stop()
	}
	s.cancelSnapshotLocked()
	pending := []<-chan struct{}{s.poller.Done(), s.snapDone}
	s.epoch++
	epoch := s.epoch
	desc := s.desc
	fetchCtx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(s.ctx, cancel)
	snapDone := make(chan struct{})
	s.snapCancel = cancel
	s.snapDone = snapDone
	s.mode = ModeSnapshot
	s.touchLocked()
	logger := s.logLocked()
	s.mu.Unlock()
	s.notify()

	started := time.Now()
	var snap Snapshot
	err := awaitAll(fetchCtx, pending...)
	if err == nil {
		snap, err = s.snapshots.Fetch(fetchCtx, desc)
	}
	close(snapDone)
	stopAfter()
	cancel()

	s.mu.Lock()
	if s.state != stateOpen || s.epoch != epoch {
		s.mu.Unlock()
		logger.Debug("snapshot superseded")
		return nil
	}
	s.snapCancel = nil
	s.mode = ModeIdle
	callerErr := ctx.Err()
	switch {
	case callerErr != nil:
	case err != nil:
		s.lastErr = err
	default:
		s.acc.Replace(snap.Entries)
		meta := snap.Metadata
		s.meta = &meta
		s.lastErr = nil
		if last, ok := s.acc.Last(); ok {
			s.poller.Cursor().Seed(last.Timestamp)
		} else {
			s.poller.Cursor().Reset()
		}
	}
	count := s.acc.Len()
	s.touchLocked()
	s.mu.Unlock()
	s.notify()

	switch {
	case callerErr != nil:
		return callerErr
	case err != nil:
		logging.WarnWithContext(logger, "snapshot fetch failed", "snapshot_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "previous entries kept"),
			logging.String(logging.FieldErrorHint, fetchHint(err)),
		)
	default:
		logger.Debug("snapshot applied", logging.Int("entries", count), logging.Duration("elapsed", time.Since(started)))
	}
	return nil
}

// StartTail begins polling from the current cursor. The accumulated sequence
// is kept, so tailing continues where the last snapshot ended. A pending
// snapshot is superseded and the first poll waits for its request to return.
// Calling it while tailing is a no-op.
func (s *Session) StartTail() error {
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.mode == ModeTailing {
		s.mu.Unlock()
		return nil
	}
	s.cancelSnapshotLocked()
	s.epoch++
	gen := s.poller.Start(s.ctx, s.desc, s.snapDone, s.acceptBatch, s.acceptError)
	s.mode = ModeTailing
	s.touchLocked()
	logger := s.logLocked()
	s.mu.Unlock()

	logger.Debug("tailing started", logging.Uint64(logging.FieldGeneration, gen))
	s.notify()
	return nil
}

// StopTail stops polling and keeps the sequence and cursor.
func (s *Session) StopTail() {
	s.mu.Lock()
	if s.state != stateOpen || s.mode != ModeTailing {
		s.mu.Unlock()
		return
	}
	s.poller.Stop()
	s.mode = ModeIdle
	s.touchLocked()
	logger := s.logLocked()
	s.mu.Unlock()

	logger.Debug("tailing stopped")
	s.notify()
}

// Clear stops any acquisition and discards the sequence while keeping the
// descriptor.
func (s *Session) Clear() {
	s.mu.Lock()
	if s.state != stateOpen {
		s.mu.Unlock()
		return
	}
	s.resetLocked()
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
}

// Close stops all work and releases the sequence. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	wasOpen := s.state == stateOpen
	if wasOpen {
		s.resetLocked()
		s.cancel()
	}
	s.state = stateClosed
	s.touchLocked()
	logger := s.logLocked()
	s.mu.Unlock()

	close(s.done)
	if wasOpen {
		logger.Debug("session closed")
	}
}

// Mode returns the active acquisition mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// View copies the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := View{
		SessionID:  s.id,
		Descriptor: s.desc,
		Mode:       s.mode,
		Entries:    s.acc.Entries(),
		Err:        s.lastErr,
		Revision:   s.revision,
	}
	if s.meta != nil {
		meta := *s.meta
		view.Metadata = &meta
	}
	view.Cursor, view.HasCursor = s.poller.Cursor().Value()
	return view
}

func (s *Session) acceptBatch(gen uint64, resp api.LogsResponse) {
	s.mu.Lock()
	if s.state != stateOpen || s.mode != ModeTailing || !s.poller.Current(gen) {
		s.mu.Unlock()
		return
	}
	s.poller.Advance(resp.Logs)
	added := s.acc.Merge(resp.Logs)
	changed := added > 0 || s.lastErr != nil
	s.lastErr = nil
	if resp.Metadata != nil && (s.meta == nil || *resp.Metadata != *s.meta) {
		meta := *resp.Metadata
		s.meta = &meta
		changed = true
	}
	if changed {
		s.touchLocked()
	}
	logger := s.logLocked()
	s.mu.Unlock()

	if added > 0 {
		logger.Debug("tail batch merged", logging.Int("received", len(resp.Logs)), logging.Int("added", added))
	}
	if changed {
		s.notify()
	}
}

func (s *Session) acceptError(gen uint64, err error) {
	s.mu.Lock()
	if s.state != stateOpen || s.mode != ModeTailing || !s.poller.Current(gen) {
		s.mu.Unlock()
		return
	}
	s.lastErr = err
	s.touchLocked()
	logger := s.logLocked()
	s.mu.Unlock()

	logging.WarnWithContext(logger, "tail fetch failed", "tail_fetch_failed",
		logging.Error(err),
		logging.String(logging.FieldImpact, "polling continues on the next tick"),
		logging.String(logging.FieldErrorHint, fetchHint(err)),
	)
	s.notify()
}

func (s *Session) checkOpenLocked() error {
	switch s.state {
	case stateOpen:
		return nil
	case stateClosed:
		return ErrSessionClosed
	default:
		return ErrSessionNotOpen
	}
}

// resetLocked stops every acquisition and empties all derived state.
func (s *Session) resetLocked() {
	s.epoch++
	s.cancelSnapshotLocked()
	s.poller.Stop()
	s.poller.Cursor().Reset()
	s.acc.Reset()
	s.meta = nil
	s.lastErr = nil
	s.mode = ModeIdle
}

func (s *Session) cancelSnapshotLocked() {
	if s.snapCancel != nil {
		s.snapCancel()
		s.snapCancel = nil
	}
}

func (s *Session) touchLocked() {
	s.revision++
}

func (s *Session) logLocked() *slog.Logger {
	return s.logger.With(logging.String(logging.FieldStreamID, s.desc.StreamID), logging.String(logging.FieldMode, s.mode.String()))
}

func (s *Session) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func fetchHint(err error) string {
	switch {
	case logs.IsUnauthorized(err):
		return "check remote.api_token or SLOTWATCH_API_TOKEN"
	case errors.Is(err, logs.ErrTimeout):
		return "raise remote.timeout_seconds or check control plane load"
	case errors.Is(err, logs.ErrMalformedResponse):
		return "verify remote.base_url and remote.logs_path point at the log endpoint"
	default:
		return "check that the control plane is reachable"
	}
}
