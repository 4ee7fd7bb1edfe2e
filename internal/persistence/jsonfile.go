package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONFileBackend stores every collection in one JSON document, rewritten
// atomically on each save.
type JSONFileBackend struct {
	mu   sync.Mutex
	path string
	doc  map[string][]Row
}

// NewJSONFileBackend loads path, creating an empty document when missing.
func NewJSONFileBackend(path string) (*JSONFileBackend, error) {
	b := &JSONFileBackend{path: path, doc: make(map[string][]Row)}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return b, b.flushLocked()
	}
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	if len(raw) == 0 {
		return b, nil
	}
	parsed := make(map[string][]json.RawMessage)
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}
	for collection, items := range parsed {
		rows := make([]Row, 0, len(items))
		for _, item := range items {
			var head struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(item, &head); err != nil {
				return nil, fmt.Errorf("parse %s record: %w", collection, err)
			}
			rows = append(rows, Row{ID: head.ID, Data: item})
		}
		b.doc[collection] = rows
	}
	return b, nil
}

func (b *JSONFileBackend) Driver() string { return "json" }

func (b *JSONFileBackend) Load(_ context.Context, collection string) ([]Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Row(nil), b.doc[collection]...), nil
}

func (b *JSONFileBackend) Save(_ context.Context, collection string, row Row) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	previous := b.doc[collection]
	b.doc[collection] = upsertRow(append([]Row(nil), previous...), row)
	if err := b.flushLocked(); err != nil {
		b.doc[collection] = previous
		return err
	}
	return nil
}

func (b *JSONFileBackend) Delete(_ context.Context, collection, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	previous := b.doc[collection]
	b.doc[collection] = removeRow(previous, id)
	if err := b.flushLocked(); err != nil {
		b.doc[collection] = previous
		return err
	}
	return nil
}

// Backup copies the document under the lock and writes the copy outside it.
func (b *JSONFileBackend) Backup(_ context.Context, dest string) (string, error) {
	b.mu.Lock()
	snapshot, err := b.encodeLocked()
	b.mu.Unlock()
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(dest, snapshot); err != nil {
		return "", err
	}
	return dest, nil
}

func (b *JSONFileBackend) Info() Info {
	info := Info{Driver: "json", Location: b.path}
	if st, err := os.Stat(b.path); err == nil {
		info.Exists = true
		info.SizeBytes = st.Size()
	}
	return info
}

func (b *JSONFileBackend) Ping(context.Context) error {
	_, err := os.Stat(b.path)
	return err
}

func (b *JSONFileBackend) Close() error { return nil }

func (b *JSONFileBackend) encodeLocked() ([]byte, error) {
	out := make(map[string][]json.RawMessage, len(Collections))
	for _, collection := range Collections {
		out[collection] = []json.RawMessage{}
	}
	for collection, rows := range b.doc {
		items := make([]json.RawMessage, 0, len(rows))
		for _, row := range rows {
			items = append(items, row.Data)
		}
		out[collection] = items
	}
	return json.MarshalIndent(out, "", "  ")
}

func (b *JSONFileBackend) flushLocked() error {
	raw, err := b.encodeLocked()
	if err != nil {
		return err
	}
	return writeFileAtomic(b.path, raw)
}

func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
