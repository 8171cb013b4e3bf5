package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"slotwatch/internal/config"
	"slotwatch/internal/testsupport"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type cliTestEnv struct {
	cfg        *config.Config
	server     *testsupport.LogServer
	configPath string
	exportDir  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("SLOTWATCH_BASE_URL", "")
	t.Setenv("SLOTWATCH_API_TOKEN", "")
	t.Setenv("HELIX_API_KEY", "")

	srv := testsupport.NewLogServer(t, "secret-token")
	cfg := testsupport.NewConfig(t, testsupport.WithLogServer(srv))
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		server:     srv,
		configPath: configPath,
		exportDir:  cfg.Export.Dir,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[remote]
base_url = %q
api_token = %q
timeout_seconds = %d

[sync]
poll_interval_ms = %d

[logging]
level = "warn"
file = %q

[export]
dir = %q
`,
		cfg.Remote.BaseURL,
		cfg.Remote.APIToken,
		cfg.Remote.TimeoutSeconds,
		cfg.Sync.PollIntervalMS,
		cfg.Logging.File,
		cfg.Export.Dir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, ctx context.Context, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
