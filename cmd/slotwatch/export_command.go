package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"slotwatch/internal/config"
	"slotwatch/internal/exportfile"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var filters syncFlags
	var output string
	var format string
	var tailFor time.Duration

	cmd := &cobra.Command{
		Use:   "export <stream>",
		Short: "Capture a stream to a file",
		Long: "Capture a snapshot of a stream, optionally keep tailing for a while, and write\n" +
			"the accumulated entries as text, jsonl, json, yaml, or sqlite.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target, exportFormat, err := resolveExportTarget(cfg, args[0], output, format, time.Now())
			if err != nil {
				return err
			}

			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}
			session, err := ctx.openSession(cmd.Context(), args[0], filters, logger)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Refresh(cmd.Context()); err != nil {
				return err
			}
			if view := session.View(); view.Err != nil {
				return ctx.describeFetchError(fmt.Errorf("snapshot: %w", view.Err))
			}

			if tailFor > 0 {
				if err := session.StartTail(); err != nil {
					return err
				}
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(tailFor):
				}
				session.StopTail()
			}

			view := session.View()
			doc := exportfile.Document{
				StreamID:   view.Descriptor.StreamID,
				Level:      view.Descriptor.Level,
				Metadata:   view.Metadata,
				Entries:    view.Entries,
				ExportedAt: time.Now().UTC(),
			}
			if err := exportfile.Write(cmd.Context(), target, exportFormat, doc); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported %d entries from %s to %s (%s)\n", len(view.Entries), doc.StreamID, target, exportFormat)
			if view.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: last tail fetch failed: %v\n", view.Err)
			}
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: a timestamped file in export.dir)")
	cmd.Flags().StringVar(&format, "format", "", "text, jsonl, json, yaml, or sqlite (default: from --output extension, then export.format)")
	cmd.Flags().DurationVar(&tailFor, "tail-for", 0, "Keep tailing for this long before writing")
	return cmd
}

// resolveExportTarget picks the destination and format. An explicit format
// wins, then the output extension, then export.format.
func resolveExportTarget(cfg *config.Config, streamID, output, format string, now time.Time) (string, exportfile.Format, error) {
	fallback, err := exportfile.ParseFormat(cfg.Export.Format)
	if err != nil {
		return "", "", err
	}
	var chosen exportfile.Format
	if strings.TrimSpace(format) != "" {
		chosen, err = exportfile.ParseFormat(format)
		if err != nil {
			return "", "", err
		}
	}

	output = strings.TrimSpace(output)
	if output == "" {
		if chosen == "" {
			chosen = fallback
		}
		if err := cfg.EnsureExportDir(); err != nil {
			return "", "", err
		}
		return filepath.Join(cfg.Export.Dir, exportfile.FileName(streamID, now, chosen)), chosen, nil
	}

	expanded, err := config.ExpandPath(output)
	if err != nil {
		return "", "", fmt.Errorf("resolve output path: %w", err)
	}
	if chosen == "" {
		chosen = exportfile.FormatForPath(expanded, fallback)
	}
	return expanded, chosen, nil
}
