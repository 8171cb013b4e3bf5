// Package logging assembles structured slog loggers and formatting helpers used
// across slotwatch.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so the sync engine and CLI tag lines
// with the same session and stream fields. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
//
// Diagnostics default to stderr because stdout carries the log entries being
// synchronized.
package logging
