package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/events"
	"github.com/spec-kit/gatelaunch/internal/persistence"
	"github.com/spec-kit/gatelaunch/internal/repository"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (d *recordingDispatcher) Enqueue(n domain.Notification) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return true
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

type fixture struct {
	store         *repository.Store
	hub           *events.Hub
	dispatcher    *recordingDispatcher
	notifications *NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := repository.NewStore(context.Background(), persistence.NewMemoryBackend())
	require.NoError(t, err)
	hub := events.NewHub(8)
	dispatcher := &recordingDispatcher{}
	return &fixture{
		store:      store,
		hub:        hub,
		dispatcher: dispatcher,
		notifications: NewNotificationService(NotificationDependencies{
			Repo:       store.Notifications,
			Hub:        hub,
			Dispatcher: dispatcher,
			Now:        func() time.Time { return fixedNow },
		}),
	}
}

func (f *fixture) notificationCount(t *testing.T) int {
	t.Helper()
	items, err := f.notifications.List(context.Background())
	require.NoError(t, err)
	return len(items)
}

func principal(id string, role domain.Role) *auth.Principal {
	return &auth.Principal{User: domain.User{ID: id, Name: "User " + id, Email: id + "@example.com", Role: role}}
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, status, apperrors.StatusCode(err), err.Error())
}
