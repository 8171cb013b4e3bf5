package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ExportFormats lists the serializations accepted by export.format.
var ExportFormats = []string{"text", "jsonl", "json", "yaml", "sqlite"}

var syncLevels = []string{"", "ERROR", "WARN", "WARNING", "INFO", "DEBUG"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateExport()
}

func (c *Config) validateRemote() error {
	parsed, err := url.Parse(c.Remote.BaseURL)
	if err != nil {
		return fmt.Errorf("remote.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("remote.base_url must use http or https, got %q", c.Remote.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("remote.base_url must include a host, got %q", c.Remote.BaseURL)
	}
	if c.Remote.TimeoutSeconds <= 0 || c.Remote.TimeoutSeconds > maxTimeoutSeconds {
		return fmt.Errorf("remote.timeout_seconds must be between 1 and %d", maxTimeoutSeconds)
	}
	return nil
}

func (c *Config) validateSync() error {
	if err := ensurePositiveMap(map[string]int{
		"sync.lines":       c.Sync.Lines,
		"sync.max_entries": c.Sync.MaxEntries,
	}); err != nil {
		return err
	}
	if c.Sync.PollIntervalMS < minPollIntervalMS {
		return fmt.Errorf("sync.poll_interval_ms must be at least %d", minPollIntervalMS)
	}
	if c.Sync.MaxEntries < c.Sync.Lines {
		return errors.New("sync.max_entries must be greater than or equal to sync.lines")
	}
	if !slices.Contains(syncLevels, c.Sync.Level) {
		return fmt.Errorf("sync.level must be one of ERROR, WARN, INFO, DEBUG (got %q)", c.Sync.Level)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func (c *Config) validateExport() error {
	if !slices.Contains(ExportFormats, c.Export.Format) {
		return fmt.Errorf("export.format must be one of %s (got %q)", strings.Join(ExportFormats, ", "), c.Export.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
