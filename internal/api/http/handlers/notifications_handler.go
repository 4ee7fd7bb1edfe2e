package handlers

import (
	"bufio"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/spec-kit/gatelaunch/internal/events"
	"github.com/spec-kit/gatelaunch/internal/service"
)

// DefaultPingInterval is how often an idle stream receives a keepalive.
const DefaultPingInterval = 30 * time.Second

// NotificationsHandler serves the admin inbox and its live stream.
type NotificationsHandler struct {
	service      *service.NotificationService
	pingInterval time.Duration
}

// NewNotificationsHandler constructs handler. A zero ping interval uses DefaultPingInterval.
func NewNotificationsHandler(svc *service.NotificationService, pingInterval time.Duration) *NotificationsHandler {
	if pingInterval <= 0 {
		pingInterval = DefaultPingInterval
	}
	return &NotificationsHandler{service: svc, pingInterval: pingInterval}
}

// List GET /api/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"notifications": items})
}

// MarkRead PATCH /api/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	n, err := h.service.MarkRead(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"notification": n})
}

// MarkAllRead PATCH /api/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	changed, err := h.service.MarkAllRead(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "updated": changed})
}

// Stream GET /api/notifications/stream. The writer exits when the client
// goes away or the hub shuts down.
func (h *NotificationsHandler) Stream(c *fiber.Ctx) error {
	sub := h.service.Subscribe()
	if sub == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Live notifications unavailable")
	}
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	interval := h.pingInterval
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		if !writeFrame(w, events.Event{Type: events.EventReady, Data: "connected"}) {
			return
		}
		for {
			select {
			case event, ok := <-sub.C:
				if !ok || !writeFrame(w, event) {
					return
				}
			case <-ticker.C:
				if !writeFrame(w, events.Event{Type: events.EventPing, Data: "keepalive"}) {
					return
				}
			}
		}
	}))
	return nil
}

func writeFrame(w *bufio.Writer, event events.Event) bool {
	if _, err := w.Write(event.Frame()); err != nil {
		return false
	}
	return w.Flush() == nil
}
