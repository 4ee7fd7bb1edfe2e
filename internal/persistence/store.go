package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/config"
)

// Collection names shared by every driver.
const (
	CollectionUsers           = "users"
	CollectionTickets         = "tickets"
	CollectionOrders          = "orders"
	CollectionAccessRequests  = "accessRequests"
	CollectionNotifications   = "notifications"
	CollectionReceipts        = "receipts"
	CollectionSupportRequests = "supportRequests"
)

// Collections lists every collection in document order.
var Collections = []string{
	CollectionUsers,
	CollectionTickets,
	CollectionOrders,
	CollectionAccessRequests,
	CollectionNotifications,
	CollectionReceipts,
	CollectionSupportRequests,
}

// ErrBackupUnsupported is returned by drivers that cannot snapshot.
var ErrBackupUnsupported = errors.New("backup unsupported by storage driver")

// Row is one serialized record plus the columns drivers index on.
type Row struct {
	ID        string
	OwnerID   string
	Status    string
	CreatedAt time.Time
	Data      []byte
}

// Info describes where a driver keeps its data.
type Info struct {
	Driver    string `json:"driver"`
	Location  string `json:"file"`
	Exists    bool   `json:"exists"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Backend is the storage strategy behind every repository.
// Load returns rows newest first. Save inserts new ids at the front and
// replaces existing ids in place. Delete of a missing id is not an error.
type Backend interface {
	Driver() string
	Load(ctx context.Context, collection string) ([]Row, error)
	Save(ctx context.Context, collection string, row Row) error
	Delete(ctx context.Context, collection, id string) error
	Backup(ctx context.Context, dest string) (string, error)
	Info() Info
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the backend selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Backend, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return NewMemoryBackend(), nil
	case "json":
		return NewJSONFileBackend(cfg.Storage.DataFile)
	case "sqlite":
		backend, err := NewSQLiteBackend(ctx, cfg.Storage.DBPath)
		if err != nil {
			return nil, err
		}
		if err := Migrate(ctx, DialectSQLite, backend.DB(), logger); err != nil {
			_ = backend.Close()
			return nil, err
		}
		return backend, nil
	case "postgres":
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if pg.PoolHandle() == nil {
			return nil, errors.New("postgres driver selected but POSTGRES_DSN is empty")
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return NewPostgresBackend(pg), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
