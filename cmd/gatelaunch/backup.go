package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/gatelaunch/internal/persistence"
	"github.com/spec-kit/gatelaunch/internal/repository"
	"github.com/spec-kit/gatelaunch/internal/service"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write one storage backup and exit",
	RunE:  runBackup,
}

func runBackup(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	backend, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	store, err := repository.NewStore(ctx, backend)
	if err != nil {
		return fmt.Errorf("load storage: %w", err)
	}
	// A one-shot run ignores the scheduled-backup switch.
	backupCfg := cfg.Backup
	backupCfg.Enabled = true
	storage := service.NewStorageService(service.StorageDependencies{
		Store:     store,
		Config:    backupCfg,
		BackupExt: cfg.Storage.BackupExt(),
		Logger:    logger,
	})

	res := storage.Backup(ctx, "manual")
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	if res.Skipped {
		return errors.New("backup skipped")
	}
	return nil
}
