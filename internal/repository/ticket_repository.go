package repository

import (
	"context"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/persistence"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository = Repository[domain.Ticket]

// NewTicketRepository loads tickets from backend.
func NewTicketRepository(ctx context.Context, backend persistence.Backend) (TicketRepository, error) {
	return newRecordRepository[domain.Ticket](ctx, backend, persistence.CollectionTickets)
}
