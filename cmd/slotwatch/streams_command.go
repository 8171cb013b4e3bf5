package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStreamsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "streams",
		Short: "List the streams known to the control plane",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			fetchCtx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout())
			defer cancel()

			resp, err := client.Streams(fetchCtx)
			if err != nil {
				return ctx.describeFetchError(err)
			}
			if asJSON {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			if len(resp.Streams) == 0 {
				fmt.Fprintln(out, "No streams reported")
				return nil
			}
			streams := resp.Streams
			sort.SliceStable(streams, func(i, j int) bool { return streams[i].StreamID < streams[j].StreamID })

			rows := make([][]string, 0, len(streams))
			for _, s := range streams {
				rows = append(rows, []string{s.StreamID, s.ProducerID, statusLabel(s.Status), s.CreatedAt, s.LastError})
			}
			fmt.Fprintln(out, renderTable([]string{"Stream", "Producer", "Status", "Created", "Last Error"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the raw listing as JSON")
	return cmd
}
