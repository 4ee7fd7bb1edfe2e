package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/events"
	"github.com/spec-kit/gatelaunch/internal/repository"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

// Dispatcher hands notifications to external providers asynchronously.
type Dispatcher interface {
	Enqueue(n domain.Notification) bool
}

// Publisher records an admin notification. Implemented by NotificationService.
type Publisher interface {
	Publish(ctx context.Context, in NotificationInput) (domain.Notification, error)
}

// NotificationInput describes a notification before it is stored.
type NotificationInput struct {
	Type    domain.NotificationType
	Title   string
	Message string
	Details map[string]any
}

// NotificationService owns the admin inbox and its fan-out.
type NotificationService struct {
	repo       repository.NotificationRepository
	hub        *events.Hub
	dispatcher Dispatcher
	logger     *zap.Logger
	now        Clock
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Repo       repository.NotificationRepository
	Hub        *events.Hub
	Dispatcher Dispatcher
	Logger     *zap.Logger
	Now        Clock
}

// NewNotificationService creates the service. Hub and Dispatcher are optional.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repo:       deps.Repo,
		hub:        deps.Hub,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        deps.Now.orSystem(),
	}
}

// Publish persists the notification, then pushes it to live subscribers and
// queues it for providers. Only the persist step can fail the call.
func (s *NotificationService) Publish(ctx context.Context, in NotificationInput) (domain.Notification, error) {
	n := domain.Notification{
		ID:        newID(),
		Scope:     domain.ScopeAdmin,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		Details:   in.Details,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return domain.Notification{}, apperrors.NewStorageFailure(err)
	}

	if s.hub != nil {
		if event, err := events.NotificationEvent(n); err == nil {
			s.hub.Publish(event)
		} else {
			s.logger.Warn("encode notification event", zap.String("notificationId", n.ID), zap.Error(err))
		}
	}
	if s.dispatcher != nil {
		s.dispatcher.Enqueue(n)
	}
	return n, nil
}

// List returns the admin inbox, newest first.
func (s *NotificationService) List(ctx context.Context) ([]domain.Notification, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	out := items[:0:0]
	for _, n := range items {
		if n.Scope == domain.ScopeAdmin {
			out = append(out, n)
		}
	}
	return out, nil
}

var errOutOfScope = errors.New("notification outside admin scope")

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) (domain.Notification, error) {
	at := s.now().UTC()
	n, err := s.repo.Update(ctx, id, func(n *domain.Notification) error {
		if n.Scope != domain.ScopeAdmin {
			return errOutOfScope
		}
		n.Read = true
		n.ReadAt = &at
		return nil
	})
	if errors.Is(err, errOutOfScope) {
		return domain.Notification{}, apperrors.NewNotFound("Notification")
	}
	if err != nil {
		return domain.Notification{}, repoError(err, "Notification")
	}
	return n, nil
}

// MarkAllRead flags every unread admin notification.
func (s *NotificationService) MarkAllRead(ctx context.Context) (int, error) {
	changed, err := s.repo.MarkAllRead(ctx, domain.ScopeAdmin, s.now().UTC())
	if err != nil {
		return changed, apperrors.NewStorageFailure(err)
	}
	return changed, nil
}

// Subscribe opens a live feed. It returns nil when no hub is wired.
func (s *NotificationService) Subscribe() *events.Subscription {
	if s.hub == nil {
		return nil
	}
	return s.hub.Subscribe()
}
