package repository

import (
	"context"
	"time"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/persistence"
)

// NotificationRepository stores the staff inbox.
type NotificationRepository interface {
	Repository[domain.Notification]
	MarkAllRead(ctx context.Context, scope string, at time.Time) (int, error)
}

type notificationRepository struct {
	*recordRepository[domain.Notification]
}

// NewNotificationRepository loads notifications from backend.
func NewNotificationRepository(ctx context.Context, backend persistence.Backend) (NotificationRepository, error) {
	base, err := newRecordRepository[domain.Notification](ctx, backend, persistence.CollectionNotifications)
	if err != nil {
		return nil, err
	}
	return &notificationRepository{recordRepository: base}, nil
}

// MarkAllRead flags every unread notification in scope.
func (r *notificationRepository) MarkAllRead(ctx context.Context, scope string, at time.Time) (int, error) {
	return r.items.UpdateWhere(ctx,
		func(n domain.Notification) bool { return n.Scope == scope && !n.Read },
		func(n *domain.Notification) {
			n.Read = true
			readAt := at
			n.ReadAt = &readAt
		})
}
