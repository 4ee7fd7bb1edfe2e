package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/persistence"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a uniqueness rule would be violated.
	ErrConflict = errors.New("record conflict")
)

// Collection caches one collection newest first and writes through to the backend.
// Writers hold the lock for the whole persist-then-apply step, readers get a copy.
type Collection[T domain.Record] struct {
	mu      sync.RWMutex
	name    string
	backend persistence.Backend
	items   []T
}

// LoadCollection reads every row of name from backend.
func LoadCollection[T domain.Record](ctx context.Context, backend persistence.Backend, name string) (*Collection[T], error) {
	rows, err := backend.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		var item T
		if err := json.Unmarshal(row.Data, &item); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", name, row.ID, err)
		}
		items = append(items, item)
	}
	return &Collection[T]{name: name, backend: backend, items: items}, nil
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// List returns a snapshot of every record, newest first.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

// Len returns the record count.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the record with id.
func (c *Collection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], nil
	}
	var zero T
	return zero, ErrNotFound
}

// Find returns the first record matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if pred(item) {
			return item, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

// Insert persists item and prepends it.
func (c *Collection[T]) Insert(ctx context.Context, item T) error {
	return c.InsertUnless(ctx, item, nil)
}

// InsertUnless inserts item unless conflict matches an existing record.
func (c *Collection[T]) InsertUnless(ctx context.Context, item T, conflict func(existing T) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if conflict != nil {
		for _, existing := range c.items {
			if conflict(existing) {
				return ErrConflict
			}
		}
	}
	if err := c.persistLocked(ctx, item); err != nil {
		return err
	}
	c.items = append([]T{item}, c.items...)
	return nil
}

// Update applies mutate to a copy of record id, persists it, then swaps it in.
// An error from mutate aborts without touching storage.
func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	i := c.indexLocked(id)
	if i < 0 {
		return zero, ErrNotFound
	}
	next := c.items[i]
	if err := mutate(&next); err != nil {
		return zero, err
	}
	if err := c.persistLocked(ctx, next); err != nil {
		return zero, err
	}
	c.items[i] = next
	return next, nil
}

// UpdateWhere applies mutate to every record matching pred and returns how many changed.
func (c *Collection[T]) UpdateWhere(ctx context.Context, pred func(T) bool, mutate func(*T)) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := 0
	for i := range c.items {
		if !pred(c.items[i]) {
			continue
		}
		next := c.items[i]
		mutate(&next)
		if err := c.persistLocked(ctx, next); err != nil {
			return changed, err
		}
		c.items[i] = next
		changed++
	}
	return changed, nil
}

// Remove deletes record id from the backend, then from the cache.
// A missing id is not an error.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return nil
	}
	if err := c.backend.Delete(context.WithoutCancel(ctx), c.name, id); err != nil {
		return err
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return nil
}

func (c *Collection[T]) indexLocked(id string) int {
	for i := range c.items {
		if c.items[i].RecordID() == id {
			return i
		}
	}
	return -1
}

// persistLocked writes item to the backend. Caller cancellation is ignored once
// the write starts so an abandoned request never leaves half a mutation.
func (c *Collection[T]) persistLocked(ctx context.Context, item T) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c.name, item.RecordID(), err)
	}
	row := persistence.Row{
		ID:        item.RecordID(),
		OwnerID:   item.OwnerID(),
		Status:    item.RecordStatus(),
		CreatedAt: item.RecordCreatedAt(),
		Data:      data,
	}
	return c.backend.Save(context.WithoutCancel(ctx), c.name, row)
}
