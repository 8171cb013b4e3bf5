// Package tui is the interactive viewer for a single stream. It renders the
// View of a sync session and maps keys onto session operations; all fetching
// stays inside the session.
package tui
