package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/config"
	"github.com/wildcare/compliance-engine/internal/database"
)

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(database.Up), string(database.Down)},
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger, err := cfg.InitLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			direction := database.Direction(args[0])
			logger.Info("Running database migrations", zap.String("direction", string(direction)))
			return database.RunMigrations(cfg.GetMigrationURL(), direction, logger)
		},
	}
	return cmd
}
