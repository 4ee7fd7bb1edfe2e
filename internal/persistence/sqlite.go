package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores records in a single-file SQLite database.
type SQLiteBackend struct {
	db   *sql.DB
	path string
	dsn  string
}

// NewSQLiteBackend opens path, creating parent directories.
func NewSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteBackend{db: db, path: path, dsn: dsn}, nil
}

// DB exposes the handle for migrations.
func (s *SQLiteBackend) DB() *sql.DB { return s.db }

func (s *SQLiteBackend) Driver() string { return "sqlite" }

func (s *SQLiteBackend) Load(ctx context.Context, collection string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, status, created_at, data FROM records WHERE collection = ? ORDER BY seq DESC`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			row     Row
			created string
			data    string
		)
		if err := rows.Scan(&row.ID, &row.OwnerID, &row.Status, &created, &data); err != nil {
			return nil, err
		}
		row.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		row.Data = []byte(data)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *SQLiteBackend) Save(ctx context.Context, collection string, row Row) error {
	const query = `
        INSERT INTO records (collection, id, owner_id, status, created_at, data)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (collection, id) DO UPDATE SET
            owner_id = excluded.owner_id,
            status = excluded.status,
            data = excluded.data`
	_, err := s.db.ExecContext(ctx, query,
		collection, row.ID, row.OwnerID, row.Status,
		row.CreatedAt.UTC().Format(time.RFC3339Nano), string(row.Data))
	if err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

func (s *SQLiteBackend) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("delete %s: %w", collection, err)
	}
	return nil
}

// Backup writes a consistent copy with VACUUM INTO. The copy runs on its own
// connection so the write connection stays free while it reads.
func (s *SQLiteBackend) Backup(ctx context.Context, dest string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	reader, err := sql.Open("sqlite", s.dsn)
	if err != nil {
		return "", fmt.Errorf("open backup connection: %w", err)
	}
	defer reader.Close()
	reader.SetMaxOpenConns(1)
	if _, err := reader.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return "", fmt.Errorf("vacuum into: %w", err)
	}
	return dest, nil
}

func (s *SQLiteBackend) Info() Info {
	info := Info{Driver: "sqlite", Location: s.path}
	if st, err := os.Stat(s.path); err == nil {
		info.Exists = true
		info.SizeBytes = st.Size()
	}
	return info
}

func (s *SQLiteBackend) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteBackend) Close() error { return s.db.Close() }
