package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "compliance-engine",
		Short:        "Jurisdiction-aware compliance engine for wildlife rescue organisations",
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (WILDCARE_* environment variables override it)")

	cmd.AddCommand(
		serveCmd(&configPath),
		migrateCmd(&configPath),
		jurisdictionsCmd(),
		evaluateCmd(),
	)
	return cmd
}
