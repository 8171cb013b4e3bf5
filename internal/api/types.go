package api

import "strings"

// StreamStatus reports the lifecycle state of the process producing a stream.
type StreamStatus string

const (
	StreamStarting StreamStatus = "starting"
	StreamRunning  StreamStatus = "running"
	StreamErrored  StreamStatus = "errored"
	StreamStopped  StreamStatus = "stopped"
)

// Known reports whether the status is one the control plane documents.
func (s StreamStatus) Known() bool {
	switch s {
	case StreamStarting, StreamRunning, StreamErrored, StreamStopped:
		return true
	default:
		return false
	}
}

// LogEntry is a single log line as served by the endpoint.
type LogEntry struct {
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Level     Level  `json:"level" yaml:"level"`
	Message   string `json:"message" yaml:"message"`
	Source    string `json:"source" yaml:"source"`
}

// StreamMetadata describes the producer behind a stream.
type StreamMetadata struct {
	StreamID   string       `json:"stream_id" yaml:"stream_id"`
	ProducerID string       `json:"producer_id" yaml:"producer_id"`
	CreatedAt  string       `json:"created_at" yaml:"created_at"`
	Status     StreamStatus `json:"status" yaml:"status"`
	LastError  string       `json:"last_error,omitempty" yaml:"last_error,omitempty"`
}

// LogQuery holds the parameters accepted by the log endpoint. Zero values are
// omitted from the request.
type LogQuery struct {
	StreamID string
	Lines    int
	Level    Level
	Since    string
}

// LogsResponse is the envelope returned for a single stream.
type LogsResponse struct {
	Metadata *StreamMetadata `json:"metadata"`
	Logs     []LogEntry      `json:"logs"`
	Count    int             `json:"count"`
}

// StreamsResponse is the envelope returned by the stream summary listing.
type StreamsResponse struct {
	Streams []StreamMetadata `json:"streams"`
	Count   int              `json:"count"`
}

// Trimmed returns a copy with surrounding whitespace and trailing line breaks
// removed.
func (e LogEntry) Trimmed() LogEntry {
	e.Timestamp = strings.TrimSpace(e.Timestamp)
	e.Message = strings.TrimRight(e.Message, "\r\n")
	e.Source = strings.TrimSpace(e.Source)
	e.Level = normalizeLevel(e.Level)
	return e
}
