package repository

import (
	"context"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/persistence"
)

// OrderRepository encapsulates top-up order persistence.
type OrderRepository = Repository[domain.Order]

// NewOrderRepository loads orders from backend.
func NewOrderRepository(ctx context.Context, backend persistence.Backend) (OrderRepository, error) {
	return newRecordRepository[domain.Order](ctx, backend, persistence.CollectionOrders)
}
