package persistence

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func dockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

func TestPostgresBackend(t *testing.T) {
	if testing.Short() || !dockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("gatelaunch"),
		postgres.WithUsername("gatelaunch"),
		postgres.WithPassword("gatelaunch"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	pg := &Postgres{Pool: pool}
	require.NoError(t, RunMigrations(ctx, pg, zap.NewNop()))

	backend := NewPostgresBackend(pg)
	t.Cleanup(func() { _ = backend.Close() })
	exerciseBackend(t, backend)

	_, err = backend.Backup(ctx, t.TempDir()+"/backup.json")
	require.NoError(t, err)
}
