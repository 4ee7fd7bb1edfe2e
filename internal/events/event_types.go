package events

import (
	"encoding/json"
	"fmt"

	"github.com/spec-kit/gatelaunch/internal/domain"
)

// EventType names a server-sent event.
type EventType string

const (
	EventReady        EventType = "ready"
	EventNotification EventType = "notification"
	EventPing         EventType = "ping"
)

// Event is one frame on the live notification stream.
type Event struct {
	Type EventType
	Data string
}

// NotificationEvent wraps a notification for subscribers.
func NotificationEvent(n domain.Notification) (Event, error) {
	raw, err := json.Marshal(n)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: EventNotification, Data: string(raw)}, nil
}

// Frame renders the event in text/event-stream format.
func (e Event) Frame() []byte {
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, e.Data))
}
