package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-SpaBookingService/internal/config"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema and seed the service catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Close()

			return migrateAndSeed(cmd.Context(), cfg, log)
		},
	}
}
