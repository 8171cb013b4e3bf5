package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var flags globalFlags

	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:           "slotwatch",
		Short:         "Fetch and follow worker slot logs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "Log endpoint base URL (overrides remote.base_url)")
	rootCmd.PersistentFlags().StringVar(&flags.token, "token", "", "Bearer token (overrides remote.api_token)")

	rootCmd.AddCommand(newShowCommand(ctx, false))
	rootCmd.AddCommand(newShowCommand(ctx, true))
	rootCmd.AddCommand(newStreamsCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
