package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"slotwatch/internal/config"
	"slotwatch/internal/logging"
	"slotwatch/internal/logs"
	"slotwatch/internal/logsync"
)

type globalFlags struct {
	configPath string
	baseURL    string
	token      string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.flags.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		if value := strings.TrimSpace(c.flags.baseURL); value != "" {
			cfg.Remote.BaseURL = strings.TrimRight(value, "/")
		}
		if value := strings.TrimSpace(c.flags.token); value != "" {
			cfg.Remote.APIToken = value
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

// logger builds the diagnostic logger. Detached loggers never write to the
// terminal.
func (c *commandContext) logger(detached bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if detached {
		return logging.NewDetachedFromConfig(cfg)
	}
	return logging.NewFromConfig(cfg)
}

func (c *commandContext) client() (*logs.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := logs.NewClient(cfg.Remote.BaseURL,
		logs.WithLogsPath(cfg.Remote.LogsPath),
		logs.WithToken(cfg.Remote.APIToken),
		logs.WithUserAgent("slotwatch"),
	)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("remote.base_url is not configured; run `slotwatch config init`")
	}
	return client, nil
}

// openSession builds and opens a session for one stream. The caller closes it.
func (c *commandContext) openSession(ctx context.Context, streamID string, filters syncFlags, logger *slog.Logger) (*logsync.Session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	resolved, err := filters.resolve(cfg, streamID)
	if err != nil {
		return nil, err
	}
	client, err := c.client()
	if err != nil {
		return nil, err
	}
	session := logsync.NewSession(client, logsync.Options{
		PollInterval: cfg.PollInterval(),
		FetchTimeout: cfg.FetchTimeout(),
		MaxEntries:   cfg.Sync.MaxEntries,
		Logger:       logger,
	})
	desc := logsync.BuildDescriptor(resolved)
	if err := session.Open(ctx, desc); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

// describeFetchError adds an operator hint to endpoint failures.
func (c *commandContext) describeFetchError(err error) error {
	if err == nil {
		return nil
	}
	base := ""
	if c.config != nil {
		base = c.config.Remote.BaseURL
	}
	switch {
	case logs.IsUnauthorized(err):
		return fmt.Errorf("%w; set remote.api_token or SLOTWATCH_API_TOKEN", err)
	case logs.IsAPIUnavailable(err):
		return fmt.Errorf("%w; verify the control plane at %s is reachable", err, base)
	default:
		return err
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
