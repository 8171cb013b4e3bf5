package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeRemote()
	c.normalizeSync()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return c.normalizeExport()
}

func (c *Config) normalizeRemote() {
	c.Remote.BaseURL = strings.TrimSpace(c.Remote.BaseURL)
	if value, ok := os.LookupEnv("SLOTWATCH_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Remote.BaseURL = strings.TrimSpace(value)
	}
	if c.Remote.BaseURL == "" {
		c.Remote.BaseURL = defaultBaseURL
	}
	c.Remote.BaseURL = strings.TrimRight(c.Remote.BaseURL, "/")

	c.Remote.APIToken = strings.TrimSpace(c.Remote.APIToken)
	if c.Remote.APIToken == "" {
		if value, ok := os.LookupEnv("SLOTWATCH_API_TOKEN"); ok {
			c.Remote.APIToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HELIX_API_KEY"); ok {
			c.Remote.APIToken = strings.TrimSpace(value)
		}
	}

	c.Remote.LogsPath = strings.TrimSpace(c.Remote.LogsPath)
	if c.Remote.LogsPath == "" {
		c.Remote.LogsPath = defaultLogsPath
	}
	if !strings.HasPrefix(c.Remote.LogsPath, "/") {
		c.Remote.LogsPath = "/" + c.Remote.LogsPath
	}
	c.Remote.LogsPath = strings.TrimRight(c.Remote.LogsPath, "/")

	if c.Remote.TimeoutSeconds == 0 {
		c.Remote.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeSync() {
	if c.Sync.Lines == 0 {
		c.Sync.Lines = defaultLines
	}
	if c.Sync.PollIntervalMS == 0 {
		c.Sync.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Sync.MaxEntries == 0 {
		c.Sync.MaxEntries = defaultMaxEntries
	}
	c.Sync.Level = strings.ToUpper(strings.TrimSpace(c.Sync.Level))
	if c.Sync.Level == "ALL" {
		c.Sync.Level = ""
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeExport() error {
	if strings.TrimSpace(c.Export.Dir) == "" {
		c.Export.Dir = defaultExportDir
	}
	var err error
	if c.Export.Dir, err = expandPath(strings.TrimSpace(c.Export.Dir)); err != nil {
		return fmt.Errorf("export.dir: %w", err)
	}
	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	if c.Export.Format == "" {
		c.Export.Format = defaultExportFormat
	}
	return nil
}
