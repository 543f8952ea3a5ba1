package main

import (
	"github.com/spf13/cobra"

	"github.com/moodmoney/quota/pkg/config"
)

func newRootCmd() *cobra.Command {
	var envFiles []string

	cmd := &cobra.Command{
		Use:           "quotad",
		Short:         "Usage metering and plan entitlements for the budgeting app",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.LoadEnv(envFiles...)
		},
	}
	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env when present)")

	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newPlansCmd())
	return cmd
}
