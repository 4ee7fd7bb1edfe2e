package persistence

import (
	"context"
	"sync"
)

// MemoryBackend keeps rows in process memory. Used for tests and ephemeral runs.
type MemoryBackend struct {
	mu   sync.RWMutex
	rows map[string][]Row
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{rows: make(map[string][]Row)}
}

func (m *MemoryBackend) Driver() string { return "memory" }

func (m *MemoryBackend) Load(_ context.Context, collection string) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Row(nil), m.rows[collection]...), nil
}

func (m *MemoryBackend) Save(_ context.Context, collection string, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[collection] = upsertRow(m.rows[collection], row)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[collection] = removeRow(m.rows[collection], id)
	return nil
}

func (m *MemoryBackend) Backup(context.Context, string) (string, error) {
	return "", ErrBackupUnsupported
}

func (m *MemoryBackend) Info() Info {
	return Info{Driver: "memory", Location: ":memory:", Exists: true}
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close() error { return nil }

func upsertRow(rows []Row, row Row) []Row {
	for i := range rows {
		if rows[i].ID == row.ID {
			rows[i] = row
			return rows
		}
	}
	out := make([]Row, 0, len(rows)+1)
	out = append(out, row)
	return append(out, rows...)
}

func removeRow(rows []Row, id string) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
