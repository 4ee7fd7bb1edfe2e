package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/config"
	"github.com/spec-kit/gatelaunch/internal/persistence"
	"github.com/spec-kit/gatelaunch/internal/repository"
)

// BackupState is the backup block of the storage health report.
type BackupState struct {
	Enabled    bool       `json:"enabled"`
	IntervalMs int64      `json:"intervalMs"`
	Dir        string     `json:"dir"`
	Writable   bool       `json:"writable"`
	LastRunAt  *time.Time `json:"lastRunAt"`
	LastFile   string     `json:"lastFile"`
	LastError  string     `json:"lastError"`
}

// StorageHealth is the storage diagnostics report.
type StorageHealth struct {
	persistence.Info
	Backup  BackupState    `json:"backup"`
	Records map[string]int `json:"records"`
}

// BackupResult is the outcome of one backup attempt.
type BackupResult struct {
	Skipped bool       `json:"skipped"`
	Reason  string     `json:"reason"`
	File    string     `json:"file,omitempty"`
	At      *time.Time `json:"at,omitempty"`
}

// StorageService reports on and snapshots the record store.
type StorageService struct {
	store  *repository.Store
	cfg    config.BackupConfig
	ext    string
	logger *zap.Logger
	now    Clock

	mu        sync.Mutex
	lastRunAt *time.Time
	lastFile  string
	lastError string
}

// StorageDependencies bundles collaborators for the storage service.
type StorageDependencies struct {
	Store     *repository.Store
	Config    config.BackupConfig
	BackupExt string
	Logger    *zap.Logger
	Now       Clock
}

// NewStorageService constructs the service.
func NewStorageService(deps StorageDependencies) *StorageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ext := deps.BackupExt
	if ext == "" {
		ext = ".json"
	}
	return &StorageService{store: deps.Store, cfg: deps.Config, ext: ext, logger: logger, now: deps.Now.orSystem()}
}

// Health reports driver location, backup state and record counts.
func (s *StorageService) Health(context.Context) StorageHealth {
	s.mu.Lock()
	state := BackupState{
		Enabled:    s.cfg.Enabled,
		IntervalMs: s.cfg.Interval.Milliseconds(),
		Dir:        s.cfg.Dir,
		LastFile:   s.lastFile,
		LastError:  s.lastError,
	}
	if s.lastRunAt != nil {
		at := *s.lastRunAt
		state.LastRunAt = &at
	}
	s.mu.Unlock()
	state.Writable = dirWritable(s.cfg.Dir)

	return StorageHealth{
		Info:    s.store.Backend.Info(),
		Backup:  state,
		Records: s.store.Counts(),
	}
}

// Backup writes a timestamped snapshot into the backup directory.
// A disabled, unsupported or failed backup is reported as skipped.
func (s *StorageService) Backup(ctx context.Context, reason string) BackupResult {
	if !s.cfg.Enabled {
		return BackupResult{Skipped: true, Reason: "Backup disabled or unsupported driver"}
	}
	now := s.now().UTC()
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(now.Format("2006-01-02T15:04:05.000Z"))
	dest := filepath.Join(s.cfg.Dir, "backup-"+stamp+s.ext)

	file, err := s.store.Backend.Backup(ctx, dest)
	if errors.Is(err, persistence.ErrBackupUnsupported) {
		return BackupResult{Skipped: true, Reason: "Backup disabled or unsupported driver"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastError = err.Error()
		s.logger.Warn("storage backup failed", zap.String("reason", reason), zap.Error(err))
		return BackupResult{Skipped: true, Reason: s.lastError}
	}
	s.lastRunAt = &now
	s.lastFile = file
	s.lastError = ""
	s.logger.Info("storage backup written", zap.String("reason", reason), zap.String("file", file))
	return BackupResult{Reason: reason, File: file, At: &now}
}

// BackupTask adapts Backup for the scheduler.
func (s *StorageService) BackupTask(reason string) func(context.Context) error {
	return func(ctx context.Context) error {
		if res := s.Backup(ctx, reason); res.Skipped {
			return errors.New(res.Reason)
		}
		return nil
	}
}

func dirWritable(dir string) bool {
	if dir == "" {
		return false
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
