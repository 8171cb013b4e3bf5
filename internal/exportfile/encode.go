package exportfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"slotwatch/internal/api"
)

type envelope struct {
	StreamID   string              `json:"stream_id" yaml:"stream_id"`
	Level      string              `json:"level,omitempty" yaml:"level,omitempty"`
	ExportedAt string              `json:"exported_at" yaml:"exported_at"`
	Metadata   *api.StreamMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Count      int                 `json:"count" yaml:"count"`
	Logs       []api.LogEntry      `json:"logs" yaml:"logs"`
}

func newEnvelope(doc Document) envelope {
	logs := doc.Entries
	if logs == nil {
		logs = []api.LogEntry{}
	}
	return envelope{
		StreamID:   doc.StreamID,
		Level:      string(doc.Level),
		ExportedAt: doc.ExportedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Metadata:   doc.Metadata,
		Count:      len(logs),
		Logs:       logs,
	}
}

func encode(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatText:
		bw := bufio.NewWriter(w)
		for _, entry := range doc.Entries {
			if _, err := fmt.Fprintln(bw, FormatLine(entry)); err != nil {
				return fmt.Errorf("write text export: %w", err)
			}
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("write text export: %w", err)
		}
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, entry := range doc.Entries {
			if err := enc.Encode(entry); err != nil {
				return fmt.Errorf("write jsonl export: %w", err)
			}
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(newEnvelope(doc)); err != nil {
			return fmt.Errorf("write json export: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newEnvelope(doc)); err != nil {
			return fmt.Errorf("write yaml export: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("write yaml export: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	return nil
}

// FormatLine renders an entry as a single plain-text line.
func FormatLine(entry api.LogEntry) string {
	var b strings.Builder
	b.WriteString(entry.Timestamp)
	b.WriteByte(' ')
	level := string(entry.Level)
	if level == "" {
		level = "-"
	}
	fmt.Fprintf(&b, "%-5s", level)
	if entry.Source != "" {
		b.WriteString(" [")
		b.WriteString(entry.Source)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)
	return b.String()
}
