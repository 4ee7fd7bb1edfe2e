package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/config"
	"github.com/spec-kit/gatelaunch/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:          "gatelaunch",
	Short:        "GateLaunch top-up and support backend",
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command. With no subcommand it serves HTTP.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backupCmd)
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
