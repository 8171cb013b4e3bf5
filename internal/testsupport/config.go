package testsupport

import (
	"path/filepath"
	"testing"

	"slotwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Remote.BaseURL = "http://127.0.0.1:0"
	cfgVal.Remote.TimeoutSeconds = 5
	cfgVal.Sync.PollIntervalMS = 250
	cfgVal.Export.Dir = filepath.Join(base, "exports")
	cfgVal.Logging.File = filepath.Join(base, "logs", "slotwatch.log")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRemote points the config at a test endpoint.
func WithRemote(baseURL, token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Remote.BaseURL = baseURL
		b.cfg.Remote.APIToken = token
	}
}

// WithLogServer points the config at a running fake endpoint.
func WithLogServer(srv *LogServer) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Remote.BaseURL = srv.URL
		b.cfg.Remote.APIToken = srv.Token
	}
}

// WithSync overrides the sync defaults.
func WithSync(lines int, level string, maxEntries int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.Lines = lines
		b.cfg.Sync.Level = level
		b.cfg.Sync.MaxEntries = maxEntries
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Export.Dir)
}
