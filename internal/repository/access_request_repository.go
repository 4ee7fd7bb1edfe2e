package repository

import (
	"context"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/persistence"
)

// AccessRequestRepository encapsulates access request persistence.
type AccessRequestRepository = Repository[domain.AccessRequest]

// NewAccessRequestRepository loads access requests from backend.
func NewAccessRequestRepository(ctx context.Context, backend persistence.Backend) (AccessRequestRepository, error) {
	return newRecordRepository[domain.AccessRequest](ctx, backend, persistence.CollectionAccessRequests)
}
