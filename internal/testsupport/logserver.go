package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"slotwatch/internal/api"
)

const defaultServerLines = 100

// RecordedRequest captures what a client sent to the fake endpoint.
type RecordedRequest struct {
	StreamID      string
	Query         url.Values
	Authorization string
}

type fakeStream struct {
	metadata api.StreamMetadata
	entries  []api.LogEntry
}

type injectedFailure struct {
	status int
	body   string
}

// LogServer is an in-process stand-in for the control plane log endpoint. It
// serves GET {LogsPath} and GET {LogsPath}/{id}, honours lines, level (at or
// above), and since (inclusive), and requires the bearer token when set.
type LogServer struct {
	URL      string
	Token    string
	LogsPath string

	mu       sync.Mutex
	streams  map[string]*fakeStream
	order    []string
	failures []injectedFailure
	delay    time.Duration
	requests []RecordedRequest
	blocked  chan struct{}
}

// NewLogServer starts a fake endpoint that is closed when the test ends.
func NewLogServer(t testing.TB, token string) *LogServer {
	t.Helper()
	s := &LogServer{
		Token:    token,
		LogsPath: "/api/v1/logs",
		streams:  make(map[string]*fakeStream),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+s.LogsPath, s.authMiddleware(s.handleStreams))
	mux.HandleFunc("GET "+s.LogsPath+"/{id}", s.authMiddleware(s.handleLogs))
	srv := httptest.NewServer(mux)
	s.URL = srv.URL
	t.Cleanup(func() {
		s.Unblock()
		srv.Close()
	})
	return s
}

// AddStream registers a stream with the given metadata.
func (s *LogServer) AddStream(meta api.StreamMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if meta.Status == "" {
		meta.Status = api.StreamRunning
	}
	if stream, ok := s.streams[meta.StreamID]; ok {
		stream.metadata = meta
		return
	}
	s.streams[meta.StreamID] = &fakeStream{metadata: meta}
	s.order = append(s.order, meta.StreamID)
}

// Append adds entries to a stream, creating it when needed.
func (s *LogServer) Append(streamID string, entries ...api.LogEntry) {
	s.mu.Lock()
	_, ok := s.streams[streamID]
	s.mu.Unlock()
	if !ok {
		s.AddStream(api.StreamMetadata{StreamID: streamID, ProducerID: "producer-" + streamID, CreatedAt: time.Now().UTC().Format(time.RFC3339)})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stream := s.streams[streamID]
	stream.entries = append(stream.entries, entries...)
}

// SetStatus changes the producer status reported for a stream.
func (s *LogServer) SetStatus(streamID string, status api.StreamStatus, lastError string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stream, ok := s.streams[streamID]; ok {
		stream.metadata.Status = status
		stream.metadata.LastError = lastError
	}
}

// FailNext makes the next n requests answer with status and body instead of
// data. A 200 status with a non-JSON body simulates a malformed response.
func (s *LogServer) FailNext(n int, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for range n {
		s.failures = append(s.failures, injectedFailure{status: status, body: body})
	}
}

// SetDelay delays every response.
func (s *LogServer) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Block holds every request until Unblock is called or the client gives up.
func (s *LogServer) Block() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blocked == nil {
		s.blocked = make(chan struct{})
	}
}

// Unblock releases requests held by Block.
func (s *LogServer) Unblock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blocked != nil {
		close(s.blocked)
		s.blocked = nil
	}
}

// Requests returns a copy of the requests served so far.
func (s *LogServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *LogServer) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if s.Token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.Token {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// intercept records the request and applies any injected delay, block, or
// failure. It reports whether the handler already answered.
func (s *LogServer) intercept(w http.ResponseWriter, r *http.Request, streamID string) bool {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		StreamID:      streamID,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
	})
	delay := s.delay
	blocked := s.blocked
	var failure *injectedFailure
	if len(s.failures) > 0 {
		failure = &s.failures[0]
		s.failures = s.failures[1:]
	}
	s.mu.Unlock()

	if blocked != nil {
		select {
		case <-blocked:
		case <-r.Context().Done():
			return true
		}
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return true
		}
	}
	if failure != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(failure.status)
		_, _ = w.Write([]byte(failure.body))
		return true
	}
	return false
}

func (s *LogServer) handleStreams(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, r, "") {
		return
	}
	s.mu.Lock()
	out := make([]api.StreamMetadata, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.streams[id].metadata)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.StreamsResponse{Streams: out, Count: len(out)})
}

func (s *LogServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	streamID := r.PathValue("id")
	if s.intercept(w, r, streamID) {
		return
	}

	query := r.URL.Query()
	lines, _ := strconv.Atoi(query.Get("lines"))
	if lines <= 0 {
		lines = defaultServerLines
	}
	level, err := api.ParseLevel(query.Get("level"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	since := strings.TrimSpace(query.Get("since"))
	var sinceAt time.Time
	if since != "" {
		sinceAt, err = time.Parse(time.RFC3339Nano, since)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since timestamp")
			return
		}
	}

	s.mu.Lock()
	stream, ok := s.streams[streamID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "stream not found")
		return
	}
	meta := stream.metadata
	matched := make([]api.LogEntry, 0, len(stream.entries))
	for _, entry := range stream.entries {
		if level != "" && entry.Level.Severity() < level.Severity() {
			continue
		}
		if since != "" {
			at, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
			if err == nil && at.Before(sinceAt) {
				continue
			}
		}
		matched = append(matched, entry)
	}
	s.mu.Unlock()

	if len(matched) > lines {
		matched = matched[len(matched)-lines:]
	}
	writeJSON(w, http.StatusOK, api.LogsResponse{Metadata: &meta, Logs: matched, Count: len(matched)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Entry builds a log entry offset seconds after base.
func Entry(base time.Time, offset int, level api.Level, message string) api.LogEntry {
	return api.LogEntry{
		Timestamp: base.Add(time.Duration(offset) * time.Second).UTC().Format(time.RFC3339Nano),
		Level:     level,
		Message:   message,
		Source:    "stdout",
	}
}
