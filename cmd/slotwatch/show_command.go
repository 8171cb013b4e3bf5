package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"slotwatch/internal/api"
	"slotwatch/internal/logstream"
)

func newShowCommand(ctx *commandContext, alwaysFollow bool) *cobra.Command {
	var filters syncFlags
	var follow bool
	var asJSON bool

	use, short := "show <stream>", "Print the latest entries of a stream"
	if alwaysFollow {
		use, short = "follow <stream>", "Print the latest entries of a stream and keep tailing"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}
			session, err := ctx.openSession(cmd.Context(), args[0], filters, logger)
			if err != nil {
				return err
			}
			defer session.Close()

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			colorize := shouldColorize(out)
			enc := json.NewEncoder(out)

			handlers := logstream.Handlers{
				Entry: func(entry api.LogEntry) {
					if asJSON {
						_ = enc.Encode(entry)
						return
					}
					fmt.Fprintln(out, renderEntry(entry, colorize))
				},
				Error: func(err error) {
					fmt.Fprintf(errOut, "warning: %v (retrying)\n", ctx.describeFetchError(err))
				},
				Status: func(meta api.StreamMetadata) {
					line := fmt.Sprintf("stream %s is now %s", meta.StreamID, statusLabel(meta.Status))
					if meta.LastError != "" {
						line += ": " + meta.LastError
					}
					fmt.Fprintln(errOut, line)
				},
			}

			printed, err := logstream.Stream(cmd.Context(), session, logstream.Options{Follow: follow || alwaysFollow}, handlers)
			if err != nil {
				return ctx.describeFetchError(err)
			}
			if !printed && !asJSON && !(follow || alwaysFollow) {
				fmt.Fprintln(out, "No log entries available")
			}
			return nil
		},
	}

	filters.register(cmd)
	if !alwaysFollow {
		cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep tailing after the initial entries")
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON lines")
	return cmd
}
