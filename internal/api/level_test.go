package api

import "testing"

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        "",
		"all":     "",
		"error":   LevelError,
		"Warning": LevelWarn,
		" info ":  LevelInfo,
		"DEBUG":   LevelDebug,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLevelNextCyclesThroughFilters(t *testing.T) {
	var level Level
	seen := []Level{}
	for range len(Levels) + 1 {
		level = level.Next()
		seen = append(seen, level)
	}
	want := []Level{LevelError, LevelWarn, LevelInfo, LevelDebug, ""}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("cycle step %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestLogEntryTrimmedNormalizesLevel(t *testing.T) {
	entry := LogEntry{Timestamp: " 2024-01-01T00:00:00Z ", Level: "warning", Message: "hello\n", Source: " stderr "}.Trimmed()
	if entry.Timestamp != "2024-01-01T00:00:00Z" || entry.Level != LevelWarn || entry.Message != "hello" || entry.Source != "stderr" {
		t.Fatalf("unexpected trimmed entry: %+v", entry)
	}
	if LevelError.Severity() <= LevelDebug.Severity() {
		t.Fatal("expected error to outrank debug")
	}
}
