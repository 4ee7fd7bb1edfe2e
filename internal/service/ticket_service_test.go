package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/persistence"
	"github.com/spec-kit/gatelaunch/internal/repository"
)

func newTicketService(f *fixture) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo: f.store.Tickets,
		Publisher:  f.notifications,
		Now:        func() time.Time { return fixedNow },
	})
}

func TestTicketCreatePublishesOneNotification(t *testing.T) {
	f := newFixture(t)
	svc := newTicketService(f)
	sub := f.hub.Subscribe()
	defer sub.Close()

	ticket, err := svc.Create(context.Background(), principal("u1", domain.RoleUser), TicketCreateInput{Title: "  Cannot\tlog in  ", Priority: "HIGH"})
	require.NoError(t, err)

	assert.Equal(t, "Cannot log in", ticket.Title)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "u1", ticket.UserID)
	assert.Equal(t, 1, f.notificationCount(t))
	assert.Equal(t, 1, f.dispatcher.count())

	select {
	case event := <-sub.C:
		assert.Contains(t, event.Data, ticket.ID)
	case <-time.After(time.Second):
		t.Fatal("expected live notification")
	}
}

func TestTicketCreateDefaultsPriority(t *testing.T) {
	f := newFixture(t)
	ticket, err := newTicketService(f).Create(context.Background(), principal("u1", domain.RoleUser), TicketCreateInput{Title: "x", Priority: "urgent"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
}

func TestTicketCreateValidationLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	_, err := newTicketService(f).Create(context.Background(), principal("u1", domain.RoleUser), TicketCreateInput{Title: "   "})
	requireStatus(t, err, 400)
	assert.Equal(t, 0, f.store.Tickets.Count())
	assert.Equal(t, 0, f.notificationCount(t))
	assert.Equal(t, 0, f.dispatcher.count())
}

func TestTicketListVisibility(t *testing.T) {
	f := newFixture(t)
	svc := newTicketService(f)
	ctx := context.Background()
	_, err := svc.Create(ctx, principal("u1", domain.RoleUser), TicketCreateInput{Title: "mine"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, principal("u2", domain.RoleUser), TicketCreateInput{Title: "theirs"})
	require.NoError(t, err)

	own, err := svc.List(ctx, principal("u1", domain.RoleUser))
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "mine", own[0].Title)

	all, err := svc.List(ctx, principal("s1", domain.RoleSupervisor))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTicketSetStatus(t *testing.T) {
	f := newFixture(t)
	svc := newTicketService(f)
	ctx := context.Background()
	ticket, err := svc.Create(ctx, principal("u1", domain.RoleUser), TicketCreateInput{Title: "broken"})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, principal("u1", domain.RoleUser), ticket.ID, "closed")
	requireStatus(t, err, 403)
	stored, err := f.store.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)

	_, err = svc.SetStatus(ctx, principal("s1", domain.RoleSupervisor), ticket.ID, "resolved")
	requireStatus(t, err, 400)

	_, err = svc.SetStatus(ctx, principal("s1", domain.RoleSupervisor), "missing", "closed")
	requireStatus(t, err, 404)

	updated, err := svc.SetStatus(ctx, principal("s1", domain.RoleSupervisor), ticket.ID, "closed")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, updated.Status)
}

type noticeFailingBackend struct {
	*persistence.MemoryBackend
}

func (b noticeFailingBackend) Save(ctx context.Context, collection string, row persistence.Row) error {
	if collection == persistence.CollectionNotifications {
		return errors.New("notifications unavailable")
	}
	return b.MemoryBackend.Save(ctx, collection, row)
}

func TestCreateIsDiscardedWhenNotificationFails(t *testing.T) {
	ctx := context.Background()
	backend := noticeFailingBackend{persistence.NewMemoryBackend()}
	store, err := repository.NewStore(ctx, backend)
	require.NoError(t, err)
	notifications := NewNotificationService(NotificationDependencies{Repo: store.Notifications, Now: clock})
	tickets := NewTicketService(TicketDependencies{TicketRepo: store.Tickets, Publisher: notifications, Now: clock})
	orders := NewOrderService(OrderDependencies{OrderRepo: store.Orders, Publisher: notifications, Now: clock})
	caller := principal("u1", domain.RoleUser)

	for i := 0; i < 2; i++ {
		_, err := tickets.Create(ctx, caller, TicketCreateInput{Title: "Cannot log in"})
		requireStatus(t, err, 500)
		_, err = orders.Create(ctx, caller, validOrder())
		requireStatus(t, err, 500)
	}

	assert.Equal(t, 0, store.Tickets.Count())
	assert.Equal(t, 0, store.Orders.Count())
	assert.Equal(t, 0, store.Notifications.Count())
	for _, collection := range []string{persistence.CollectionTickets, persistence.CollectionOrders} {
		rows, err := backend.Load(ctx, collection)
		require.NoError(t, err)
		assert.Empty(t, rows, collection)
	}
}
