package main

import (
	"github.com/spf13/cobra"

	"slotwatch/internal/tui"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var filters syncFlags
	var noTail bool

	cmd := &cobra.Command{
		Use:   "watch <stream>",
		Short: "Open the interactive viewer for a stream",
		Long: "Open a full-screen viewer. Keys: r refresh, t toggle tailing, l cycle level,\n" +
			"c clear, g/G top/bottom, q quit. Diagnostics go to logging.file only.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			session, err := ctx.openSession(cmd.Context(), args[0], filters, logger)
			if err != nil {
				return err
			}
			defer session.Close()

			return tui.Run(cmd.Context(), session, tui.Options{Tail: !noTail, Logger: logger})
		},
	}

	filters.register(cmd)
	cmd.Flags().BoolVar(&noTail, "no-tail", false, "Start idle instead of tailing after the first snapshot")
	return cmd
}
