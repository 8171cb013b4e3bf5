// Package logs talks to the remote log query endpoint.
//
// Client issues bounded GET requests for one stream (optionally narrowed by
// level and an inclusive since timestamp) and for the stream summary listing.
// Every failure is returned as a *FetchError tagged with one of the marker
// errors ErrTransport, ErrTimeout, or ErrMalformedResponse so callers can
// branch with errors.Is without parsing messages.
//
// The client holds no state between requests. Cursors, deduplication, and
// polling live in internal/logsync.
package logs
