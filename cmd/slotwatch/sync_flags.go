package main

import (
	"github.com/spf13/cobra"

	"slotwatch/internal/api"
	"slotwatch/internal/config"
	"slotwatch/internal/logsync"
)

// syncFlags are the per-command filters layered over the [sync] defaults.
type syncFlags struct {
	lines int
	level string
}

func (f *syncFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.lines, "lines", "n", 0, "Maximum entries per fetch (default sync.lines)")
	cmd.Flags().StringVarP(&f.level, "level", "l", "", "Level filter: ERROR, WARN, INFO, DEBUG, or all (default sync.level)")
}

func (f syncFlags) resolve(cfg *config.Config, streamID string) (logsync.Filters, error) {
	if f.level != "" {
		if _, err := api.ParseLevel(f.level); err != nil {
			return logsync.Filters{}, err
		}
	}
	filters := logsync.Filters{
		StreamID: streamID,
		Level:    cfg.Sync.Level,
		Lines:    cfg.Sync.Lines,
	}
	if f.lines > 0 {
		filters.Lines = f.lines
	}
	if f.level != "" {
		filters.Level = f.level
	}
	return filters, nil
}
