package repository

import (
	"context"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/persistence"
)

// SupportRequestRepository encapsulates public support request persistence.
type SupportRequestRepository = Repository[domain.SupportRequest]

// NewSupportRequestRepository loads support requests from backend.
func NewSupportRequestRepository(ctx context.Context, backend persistence.Backend) (SupportRequestRepository, error) {
	return newRecordRepository[domain.SupportRequest](ctx, backend, persistence.CollectionSupportRequests)
}
