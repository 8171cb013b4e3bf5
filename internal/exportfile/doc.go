// Package exportfile writes an accumulated log sequence to disk.
//
// Text, JSON Lines, JSON, and YAML files are written to a temporary file and
// renamed into place. SQLite exports append to a database so several captures
// can share one file; each capture becomes a row in exports with its entries
// keyed by export id. Every write holds an advisory lock on "<path>.lock" so
// two captures never interleave.
package exportfile
