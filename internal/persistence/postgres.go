package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/config"
)

// Postgres wraps access to a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres establishes a connection pool when DSN is provided.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		logger.Warn("POSTGRES_DSN not provided; skipping database connection")
		return &Postgres{Pool: nil}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return &Postgres{Pool: pool}, nil
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// PoolHandle returns the underlying pgx pool.
func (p *Postgres) PoolHandle() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.Pool
}

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.Pool.Ping(ctx)
}

// PostgresBackend stores records as JSONB rows.
type PostgresBackend struct {
	pg *Postgres
}

// NewPostgresBackend wraps an established pool.
func NewPostgresBackend(pg *Postgres) *PostgresBackend {
	return &PostgresBackend{pg: pg}
}

func (b *PostgresBackend) Driver() string { return "postgres" }

func (b *PostgresBackend) Load(ctx context.Context, collection string) ([]Row, error) {
	const query = `
        SELECT id, owner_id, status, created_at, data
        FROM records WHERE collection = $1 ORDER BY seq DESC`
	rows, err := b.pg.Pool.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.OwnerID, &row.Status, &row.CreatedAt, &row.Data); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (b *PostgresBackend) Save(ctx context.Context, collection string, row Row) error {
	const query = `
        INSERT INTO records (collection, id, owner_id, status, created_at, data)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (collection, id) DO UPDATE SET
            owner_id = EXCLUDED.owner_id,
            status = EXCLUDED.status,
            data = EXCLUDED.data`
	if _, err := b.pg.Pool.Exec(ctx, query,
		collection, row.ID, row.OwnerID, row.Status, row.CreatedAt, row.Data,
	); err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

func (b *PostgresBackend) Delete(ctx context.Context, collection, id string) error {
	if _, err := b.pg.Pool.Exec(ctx, `DELETE FROM records WHERE collection = $1 AND id = $2`, collection, id); err != nil {
		return fmt.Errorf("delete %s: %w", collection, err)
	}
	return nil
}

// Backup exports every collection to a JSON document readable by the json driver.
func (b *PostgresBackend) Backup(ctx context.Context, dest string) (string, error) {
	doc := make(map[string][]json.RawMessage, len(Collections))
	for _, collection := range Collections {
		rows, err := b.Load(ctx, collection)
		if err != nil {
			return "", err
		}
		items := make([]json.RawMessage, 0, len(rows))
		for _, row := range rows {
			items = append(items, row.Data)
		}
		doc[collection] = items
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	if err := writeFileAtomic(dest, raw); err != nil {
		return "", err
	}
	return dest, nil
}

func (b *PostgresBackend) Info() Info {
	location := ""
	if b.pg != nil && b.pg.Pool != nil {
		cfg := b.pg.Pool.Config().ConnConfig
		location = fmt.Sprintf("postgres://%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
	}
	return Info{Driver: "postgres", Location: location, Exists: b.pg != nil && b.pg.Pool != nil}
}

func (b *PostgresBackend) Ping(ctx context.Context) error { return b.pg.Ping(ctx) }

func (b *PostgresBackend) Close() error {
	b.pg.Close()
	return nil
}
