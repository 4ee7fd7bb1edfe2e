package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/gatelaunch/internal/persistence"
)

// Store bundles every repository over one backend.
type Store struct {
	Backend         persistence.Backend
	Users           UserRepository
	Tickets         TicketRepository
	Orders          OrderRepository
	AccessRequests  AccessRequestRepository
	Receipts        ReceiptRepository
	Notifications   NotificationRepository
	SupportRequests SupportRequestRepository
}

// NewStore loads every collection from backend.
func NewStore(ctx context.Context, backend persistence.Backend) (*Store, error) {
	s := &Store{Backend: backend}
	var err error
	if s.Users, err = NewUserRepository(ctx, backend); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if s.Tickets, err = NewTicketRepository(ctx, backend); err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}
	if s.Orders, err = NewOrderRepository(ctx, backend); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if s.AccessRequests, err = NewAccessRequestRepository(ctx, backend); err != nil {
		return nil, fmt.Errorf("load access requests: %w", err)
	}
	if s.Receipts, err = NewReceiptRepository(ctx, backend); err != nil {
		return nil, fmt.Errorf("load receipts: %w", err)
	}
	if s.Notifications, err = NewNotificationRepository(ctx, backend); err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	if s.SupportRequests, err = NewSupportRequestRepository(ctx, backend); err != nil {
		return nil, fmt.Errorf("load support requests: %w", err)
	}
	return s, nil
}

// Counts returns the record count per collection.
func (s *Store) Counts() map[string]int {
	return map[string]int{
		persistence.CollectionUsers:           s.Users.Count(),
		persistence.CollectionTickets:         s.Tickets.Count(),
		persistence.CollectionOrders:          s.Orders.Count(),
		persistence.CollectionAccessRequests:  s.AccessRequests.Count(),
		persistence.CollectionNotifications:   s.Notifications.Count(),
		persistence.CollectionReceipts:        s.Receipts.Count(),
		persistence.CollectionSupportRequests: s.SupportRequests.Count(),
	}
}
