// Package config loads, normalizes, and validates slotwatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SLOTWATCH_API_TOKEN. The Config type centralizes every knob the CLI and the
// sync engine need so the remote endpoint, polling cadence, and export
// locations are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
