package exportfile_test

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"slotwatch/internal/api"
	"slotwatch/internal/exportfile"
)

var exportedAt = time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

func sampleDocument() exportfile.Document {
	return exportfile.Document{
		StreamID: "slot-1",
		Level:    api.LevelInfo,
		Metadata: &api.StreamMetadata{
			StreamID:   "slot-1",
			ProducerID: "runner-7",
			CreatedAt:  "2024-05-01T11:00:00Z",
			Status:     api.StreamRunning,
		},
		Entries: []api.LogEntry{
			{Timestamp: "2024-05-01T12:00:01Z", Level: api.LevelInfo, Message: "boot", Source: "stdout"},
			{Timestamp: "2024-05-01T12:00:02Z", Level: api.LevelError, Message: "disk full", Source: "stderr"},
		},
		ExportedAt: exportedAt,
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]exportfile.Format{
		"text":  exportfile.FormatText,
		"LOG":   exportfile.FormatText,
		"jsonl": exportfile.FormatJSONL,
		"Json":  exportfile.FormatJSON,
		"yml":   exportfile.FormatYAML,
		"db":    exportfile.FormatSQLite,
	}
	for input, want := range cases {
		got, err := exportfile.ParseFormat(input)
		if err != nil {
			t.Fatalf("ParseFormat(%q) error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := exportfile.ParseFormat("xml"); !errors.Is(err, exportfile.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFormatForPathAndFileName(t *testing.T) {
	if got := exportfile.FormatForPath("/tmp/capture.yaml", exportfile.FormatJSONL); got != exportfile.FormatYAML {
		t.Fatalf("expected yaml, got %q", got)
	}
	if got := exportfile.FormatForPath("/tmp/capture", exportfile.FormatJSONL); got != exportfile.FormatJSONL {
		t.Fatalf("expected default, got %q", got)
	}
	name := exportfile.FileName("slot/1 a", exportedAt, exportfile.FormatSQLite)
	if name != "slot_1_a-20240501T123000Z.db" {
		t.Fatalf("unexpected file name %q", name)
	}
}

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.log")
	if err := exportfile.Write(context.Background(), path, exportfile.FormatText, sampleDocument()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", data)
	}
	if lines[1] != "2024-05-01T12:00:02Z ERROR [stderr] disk full" {
		t.Fatalf("unexpected line %q", lines[1])
	}
	if _, err := os.Stat(path + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed, stat err=%v", err)
	}
}

func TestWriteJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.jsonl")
	if err := exportfile.Write(context.Background(), path, exportfile.FormatJSONL, sampleDocument()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer file.Close()

	var got []api.LogEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry api.LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("decode line %q: %v", scanner.Text(), err)
		}
		got = append(got, entry)
	}
	if len(got) != 2 || got[0].Message != "boot" || got[1].Level != api.LevelError {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestWriteJSONAndYAMLEnvelopes(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "capture.json")
	yamlPath := filepath.Join(dir, "capture.yaml")
	doc := sampleDocument()
	if err := exportfile.Write(context.Background(), jsonPath, exportfile.FormatJSON, doc); err != nil {
		t.Fatalf("Write json: %v", err)
	}
	if err := exportfile.Write(context.Background(), yamlPath, exportfile.FormatYAML, doc); err != nil {
		t.Fatalf("Write yaml: %v", err)
	}

	type envelope struct {
		StreamID   string             `json:"stream_id" yaml:"stream_id"`
		Level      string             `json:"level" yaml:"level"`
		ExportedAt string             `json:"exported_at" yaml:"exported_at"`
		Metadata   api.StreamMetadata `json:"metadata" yaml:"metadata"`
		Count      int                `json:"count" yaml:"count"`
		Logs       []api.LogEntry     `json:"logs" yaml:"logs"`
	}
	check := func(name string, env envelope) {
		t.Helper()
		if env.StreamID != "slot-1" || env.Level != "INFO" || env.Count != 2 || len(env.Logs) != 2 {
			t.Fatalf("%s: unexpected envelope %+v", name, env)
		}
		if env.Metadata.ProducerID != "runner-7" || env.Metadata.Status != api.StreamRunning {
			t.Fatalf("%s: unexpected metadata %+v", name, env.Metadata)
		}
		if env.ExportedAt != "2024-05-01T12:30:00.000Z" {
			t.Fatalf("%s: unexpected exported_at %q", name, env.ExportedAt)
		}
	}

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var fromJSON envelope
	if err := json.Unmarshal(raw, &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	check("json", fromJSON)

	raw, err = os.ReadFile(yamlPath)
	if err != nil {
		t.Fatalf("read yaml: %v", err)
	}
	var fromYAML envelope
	if err := yaml.Unmarshal(raw, &fromYAML); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	check("yaml", fromYAML)
}

func TestWriteEmptyJSONHasEmptyLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := exportfile.Write(context.Background(), path, exportfile.FormatJSON, exportfile.Document{StreamID: "slot-1"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), `"logs": []`) {
		t.Fatalf("expected empty logs array, got %s", raw)
	}
}

func TestWriteSQLiteAppendsExports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captures.db")
	ctx := context.Background()
	if err := exportfile.Write(ctx, path, exportfile.FormatSQLite, sampleDocument()); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	second := sampleDocument()
	second.Entries = second.Entries[:1]
	second.Metadata = nil
	if err := exportfile.Write(ctx, path, exportfile.FormatSQLite, second); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var exports, entries int
	if err := db.QueryRow("SELECT COUNT(1) FROM exports").Scan(&exports); err != nil {
		t.Fatalf("count exports: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(1) FROM entries").Scan(&entries); err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if exports != 2 || entries != 3 {
		t.Fatalf("expected 2 exports and 3 entries, got %d and %d", exports, entries)
	}

	var producer sql.NullString
	var count int
	if err := db.QueryRow("SELECT producer_id, entry_count FROM exports ORDER BY id LIMIT 1").Scan(&producer, &count); err != nil {
		t.Fatalf("read export row: %v", err)
	}
	if producer.String != "runner-7" || count != 2 {
		t.Fatalf("unexpected export row producer=%v count=%d", producer, count)
	}

	var message string
	if err := db.QueryRow("SELECT message FROM entries WHERE export_id = 1 AND seq = 1").Scan(&message); err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if message != "disk full" {
		t.Fatalf("unexpected message %q", message)
	}
}

func TestWriteSQLiteRejectsOtherSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE schema_version (version INTEGER NOT NULL); INSERT INTO schema_version (version) VALUES (99)"); err != nil {
		t.Fatalf("seed schema: %v", err)
	}
	_ = db.Close()

	err = exportfile.Write(context.Background(), path, exportfile.FormatSQLite, sampleDocument())
	if !errors.Is(err, exportfile.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestWriteFailsWhenLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.jsonl")
	holder := flock.New(path + ".lock")
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock ok=%v err=%v", ok, err)
	}
	defer func() { _ = holder.Unlock() }()

	err = exportfile.Write(context.Background(), path, exportfile.FormatJSONL, sampleDocument())
	if !errors.Is(err, exportfile.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected no export written, stat err=%v", statErr)
	}
}

func TestWriteRejectsMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "capture.log")
	if err := exportfile.Write(context.Background(), path, exportfile.FormatText, sampleDocument()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWriteRejectsUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.xml")
	err := exportfile.Write(context.Background(), path, exportfile.Format("xml"), sampleDocument())
	if !errors.Is(err, exportfile.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
