package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"slotwatch/internal/config"
)

func TestLoadDefaultConfigUsesEnvTokenAndExpandsPaths(t *testing.T) {
	t.Setenv("SLOTWATCH_API_TOKEN", "test-token")
	t.Setenv("SLOTWATCH_BASE_URL", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantExport := filepath.Join(tempHome, ".local", "share", "slotwatch", "exports")
	if cfg.Export.Dir != wantExport {
		t.Fatalf("unexpected export dir: got %q want %q", cfg.Export.Dir, wantExport)
	}
	if cfg.Remote.APIToken != "test-token" {
		t.Fatalf("expected token from env, got %q", cfg.Remote.APIToken)
	}
	if cfg.Remote.BaseURL != config.Default().Remote.BaseURL {
		t.Fatalf("unexpected base url: %q", cfg.Remote.BaseURL)
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Fatalf("expected 2s poll interval, got %s", cfg.PollInterval())
	}
	if cfg.FetchTimeout() != 15*time.Second {
		t.Fatalf("expected 15s fetch timeout, got %s", cfg.FetchTimeout())
	}
	if cfg.Sync.Lines != 500 || cfg.Sync.MaxEntries != 5000 {
		t.Fatalf("unexpected sync defaults: %+v", cfg.Sync)
	}
	if cfg.Sync.Level != "" {
		t.Fatalf("expected no level filter by default, got %q", cfg.Sync.Level)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("SLOTWATCH_BASE_URL", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "slotwatch.toml")

	type payload struct {
		Remote struct {
			BaseURL  string `toml:"base_url"`
			APIToken string `toml:"api_token"`
			LogsPath string `toml:"logs_path"`
		} `toml:"remote"`
		Sync struct {
			Lines          int    `toml:"lines"`
			Level          string `toml:"level"`
			PollIntervalMS int    `toml:"poll_interval_ms"`
		} `toml:"sync"`
	}
	custom := payload{}
	custom.Remote.BaseURL = "https://control.example.com/"
	custom.Remote.APIToken = "file-token"
	custom.Remote.LogsPath = "api/v1/admin/logs/"
	custom.Sync.Lines = 200
	custom.Sync.Level = "warn"
	custom.Sync.PollIntervalMS = 1000
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Remote.BaseURL != "https://control.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Remote.BaseURL)
	}
	if cfg.Remote.LogsPath != "/api/v1/admin/logs" {
		t.Fatalf("expected canonical logs path, got %q", cfg.Remote.LogsPath)
	}
	if cfg.Sync.Lines != 200 {
		t.Fatalf("expected lines 200, got %d", cfg.Sync.Lines)
	}
	if cfg.Sync.Level != "WARN" {
		t.Fatalf("expected upper-cased level, got %q", cfg.Sync.Level)
	}
	if cfg.PollInterval() != time.Second {
		t.Fatalf("expected 1s poll interval, got %s", cfg.PollInterval())
	}
	if cfg.Sync.MaxEntries != 5000 {
		t.Fatalf("expected default max entries, got %d", cfg.Sync.MaxEntries)
	}
}

func TestConfigFileTokenWinsOverEnvFallback(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "slotwatch.toml")
	if err := os.WriteFile(configPath, []byte("[remote]\napi_token = \"file-token\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SLOTWATCH_API_TOKEN", "env-token")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Remote.APIToken != "file-token" {
		t.Fatalf("expected token from file, got %q", cfg.Remote.APIToken)
	}
}

func TestEnvBaseURLOverridesConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "slotwatch.toml")
	if err := os.WriteFile(configPath, []byte("[remote]\nbase_url = \"http://file.example:1\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SLOTWATCH_BASE_URL", "http://env.example:2")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Remote.BaseURL != "http://env.example:2" {
		t.Fatalf("expected base url from env, got %q", cfg.Remote.BaseURL)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "slotwatch.toml")
	if err := os.WriteFile(configPath, []byte("[sync]\npoll_every = 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "poll_interval_ms") {
		t.Fatalf("sample config missing sync settings: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Sync.PollIntervalMS != config.Default().Sync.PollIntervalMS {
		t.Fatalf("sample poll interval drifted from defaults: %d", cfg.Sync.PollIntervalMS)
	}
	if !strings.Contains(cfg.Export.Dir, "slotwatch") {
		t.Fatalf("expected export dir to contain slotwatch, got %q", cfg.Export.Dir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"non-http base url":        func(c *config.Config) { c.Remote.BaseURL = "ftp://example.com" },
		"missing host":             func(c *config.Config) { c.Remote.BaseURL = "http://" },
		"zero timeout":             func(c *config.Config) { c.Remote.TimeoutSeconds = 0 },
		"excessive timeout":        func(c *config.Config) { c.Remote.TimeoutSeconds = 3600 },
		"zero lines":               func(c *config.Config) { c.Sync.Lines = 0 },
		"fast polling":             func(c *config.Config) { c.Sync.PollIntervalMS = 10 },
		"bound below line cap":     func(c *config.Config) { c.Sync.MaxEntries = c.Sync.Lines - 1 },
		"unknown sync level":       func(c *config.Config) { c.Sync.Level = "TRACE" },
		"unknown logging level":    func(c *config.Config) { c.Logging.Level = "verbose" },
		"unsupported export style": func(c *config.Config) { c.Export.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
