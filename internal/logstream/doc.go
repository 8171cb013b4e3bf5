// Package logstream turns a sync session into a line-oriented feed for the
// CLI: one snapshot, then (when following) only the entries that are newer
// than anything already printed.
package logstream
