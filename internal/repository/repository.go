package repository

import (
	"context"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/persistence"
)

// Repository is the storage-agnostic contract for an owned collection.
type Repository[T domain.Record] interface {
	Create(ctx context.Context, item T) error
	Update(ctx context.Context, id string, mutate func(*T) error) (T, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Count() int
}

type recordRepository[T domain.Record] struct {
	items *Collection[T]
}

func newRecordRepository[T domain.Record](ctx context.Context, backend persistence.Backend, name string) (*recordRepository[T], error) {
	items, err := LoadCollection[T](ctx, backend, name)
	if err != nil {
		return nil, err
	}
	return &recordRepository[T]{items: items}, nil
}

func (r *recordRepository[T]) Create(ctx context.Context, item T) error {
	return r.items.Insert(ctx, item)
}

func (r *recordRepository[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	return r.items.Update(ctx, id, mutate)
}

func (r *recordRepository[T]) Delete(ctx context.Context, id string) error {
	return r.items.Remove(ctx, id)
}

func (r *recordRepository[T]) GetByID(_ context.Context, id string) (T, error) {
	return r.items.Get(id)
}

func (r *recordRepository[T]) List(context.Context) ([]T, error) {
	return r.items.List(), nil
}

func (r *recordRepository[T]) Count() int {
	return r.items.Len()
}
