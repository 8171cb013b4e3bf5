// Package main hosts the slotwatch CLI entrypoint and command graph.
//
// Every log-reading command builds one sync session for the requested stream
// and hands it to a consumer: the line printer for show and follow, the file
// writer for export, and the full-screen viewer for watch. Configuration,
// endpoint client construction, and diagnostic logging are resolved once per
// invocation in the command context.
package main
