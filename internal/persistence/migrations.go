package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

// Dialect selects the migration set.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Migrate applies the embedded schema for dialect to db.
func Migrate(ctx context.Context, dialect Dialect, db *sql.DB, logger *zap.Logger) error {
	var gooseDialect goose.Dialect
	switch dialect {
	case DialectSQLite:
		gooseDialect = goose.DialectSQLite3
	case DialectPostgres:
		gooseDialect = goose.DialectPostgres
	default:
		return fmt.Errorf("unknown migration dialect %q", dialect)
	}

	fsys, err := fs.Sub(migrationFS, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		logger.Info("applied migration", zap.String("dialect", string(dialect)), zap.String("file", res.Source.Path))
	}
	logger.Info("migrations applied", zap.Int("count", len(results)))
	return nil
}

// RunMigrations applies the postgres schema through the pgx pool.
func RunMigrations(ctx context.Context, pg *Postgres, logger *zap.Logger) error {
	if pg == nil || pg.PoolHandle() == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}
	// The pool owns the connections; the sql.DB view is not closed here.
	db := stdlib.OpenDBFromPool(pg.PoolHandle())
	return Migrate(ctx, DialectPostgres, db, logger)
}
