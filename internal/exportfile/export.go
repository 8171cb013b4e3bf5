package exportfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"slotwatch/internal/api"
)

// Format names an export encoding.
type Format string

const (
	FormatText   Format = "text"
	FormatJSONL  Format = "jsonl"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

var (
	// ErrUnsupportedFormat is returned for unknown format names.
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrLocked is returned when another writer holds the target's lock.
	ErrLocked = errors.New("export target is locked by another writer")
)

// Document is one capture of a stream.
type Document struct {
	StreamID   string
	Level      api.Level
	Metadata   *api.StreamMetadata
	Entries    []api.LogEntry
	ExportedAt time.Time
}

// ParseFormat accepts a format name, case-insensitively.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatText, FormatJSONL, FormatJSON, FormatYAML, FormatSQLite:
		return f, nil
	case "txt", "log":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	case "db", "sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, value)
	}
}

// FormatForPath infers a format from the file extension, falling back to
// def when the extension is not recognized.
func FormatForPath(path string, def Format) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return def
	}
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return def
}

// Extension returns the conventional file extension for a format.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return ".log"
	case FormatSQLite:
		return ".db"
	default:
		return "." + string(f)
	}
}

// FileName builds a default file name for a capture of streamID.
func FileName(streamID string, at time.Time, f Format) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, streamID)
	if safe == "" {
		safe = "stream"
	}
	return fmt.Sprintf("%s-%s%s", safe, at.UTC().Format("20060102T150405Z"), f.Extension())
}

// Write serializes doc to path in the given format.
func Write(ctx context.Context, path string, f Format, doc Document) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("export path is required")
	}
	if doc.ExportedAt.IsZero() {
		doc.ExportedAt = time.Now().UTC()
	}
	if err := checkDirectory(filepath.Dir(path)); err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire export lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, path)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(path + ".lock")
	}()

	switch f {
	case FormatSQLite:
		return writeSQLite(ctx, path, doc)
	case FormatText, FormatJSONL, FormatJSON, FormatYAML:
		return writeFile(path, f, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

func checkDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("export directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("export directory %s is not a directory", dir)
	}
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("export directory %s is not writable: %w", dir, err)
	}
	return nil
}

func writeFile(path string, f Format, doc Document) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp export: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := encode(tmp, f, doc); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp export: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod export: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}
