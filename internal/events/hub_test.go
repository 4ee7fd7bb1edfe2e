package events

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gatelaunch/internal/domain"
)

func TestHubDeliversToEverySubscriber(t *testing.T) {
	hub := NewHub(4)
	a := hub.Subscribe()
	b := hub.Subscribe()
	defer a.Close()
	defer b.Close()

	delivered := hub.Publish(Event{Type: EventPing, Data: "keepalive"})
	assert.Equal(t, 2, delivered)

	for _, sub := range []*Subscription{a, b} {
		select {
		case ev := <-sub.C:
			assert.Equal(t, EventPing, ev.Type)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestHubSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	hub := NewHub(1)
	slow := hub.Subscribe()
	fast := hub.Subscribe()
	defer slow.Close()
	defer fast.Close()

	hub.Publish(Event{Type: EventPing, Data: "1"})
	<-fast.C

	done := make(chan int)
	go func() { done <- hub.Publish(Event{Type: EventPing, Data: "2"}) }()
	select {
	case delivered := <-done:
		assert.Equal(t, 1, delivered)
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Equal(t, int64(1), hub.Dropped())
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe()
	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.Count())

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, hub.Publish(Event{Type: EventPing}))
}

func TestNotificationEventFrame(t *testing.T) {
	ev, err := NotificationEvent(domain.Notification{ID: "n1", Scope: domain.ScopeAdmin, Type: domain.NotificationTicketCreated})
	require.NoError(t, err)
	frame := string(ev.Frame())
	assert.True(t, strings.HasPrefix(frame, "event: notification\ndata: {"))
	assert.True(t, strings.HasSuffix(frame, "}\n\n"))
	assert.Contains(t, frame, `"id":"n1"`)
}
