package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gatelaunch/internal/config"
	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/persistence"
	"github.com/spec-kit/gatelaunch/internal/repository"
)

func TestStorageBackupWithJSONBackend(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	backend, err := persistence.NewJSONFileBackend(filepath.Join(dir, "data.json"))
	require.NoError(t, err)
	store, err := repository.NewStore(ctx, backend)
	require.NoError(t, err)
	require.NoError(t, store.Tickets.Create(ctx, domain.Ticket{ID: "t1", Status: domain.TicketStatusOpen, CreatedAt: fixedNow}))

	backupDir := filepath.Join(dir, "backups")
	svc := NewStorageService(StorageDependencies{
		Store:     store,
		Config:    config.BackupConfig{Enabled: true, Dir: backupDir},
		BackupExt: ".json",
		Now:       clock,
	})

	res := svc.Backup(ctx, "manual")
	require.False(t, res.Skipped, res.Reason)
	assert.Equal(t, filepath.Join(backupDir, "backup-2026-03-01T12-00-00-000Z.json"), res.File)
	raw, err := os.ReadFile(res.File)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"t1"`))

	health := svc.Health(ctx)
	assert.Equal(t, "json", health.Driver)
	assert.True(t, health.Exists)
	assert.True(t, health.Backup.Writable)
	assert.Equal(t, res.File, health.Backup.LastFile)
	assert.Equal(t, 1, health.Records[persistence.CollectionTickets])
}

func TestStorageBackupSkippedForMemory(t *testing.T) {
	f := newFixture(t)
	svc := NewStorageService(StorageDependencies{Store: f.store, Config: config.BackupConfig{Enabled: true, Dir: t.TempDir()}, Now: clock})

	res := svc.Backup(context.Background(), "interval")
	assert.True(t, res.Skipped)
	assert.Equal(t, "Backup disabled or unsupported driver", res.Reason)
	require.Error(t, svc.BackupTask("interval")(context.Background()))
}

func TestStorageBackupDisabled(t *testing.T) {
	f := newFixture(t)
	svc := NewStorageService(StorageDependencies{Store: f.store, Now: clock})
	assert.True(t, svc.Backup(context.Background(), "manual").Skipped)
	assert.False(t, svc.Health(context.Background()).Backup.Writable)
}
