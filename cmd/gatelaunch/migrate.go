package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations for the configured SQL driver",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	switch cfg.Storage.Driver {
	case "sqlite", "postgres":
	default:
		logger.Info("driver has no schema", zap.String("driver", cfg.Storage.Driver))
		return nil
	}
	// Open applies pending migrations before returning.
	cfg.Postgres.RunMigrations = true
	backend, err := persistence.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("migrate up: ok", zap.String("driver", backend.Driver()))
	return backend.Close()
}
