package repository

import (
	"context"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/persistence"
)

// ReceiptRepository encapsulates payment receipt persistence.
type ReceiptRepository = Repository[domain.Receipt]

// NewReceiptRepository loads receipts from backend.
func NewReceiptRepository(ctx context.Context, backend persistence.Backend) (ReceiptRepository, error) {
	return newRecordRepository[domain.Receipt](ctx, backend, persistence.CollectionReceipts)
}
