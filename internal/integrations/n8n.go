package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/gatelaunch/internal/domain"
)

// ErrN8NDisabled is returned when no workflow URL is configured.
var ErrN8NDisabled = errors.New("n8n webhook is not configured")

// N8NClient posts events to a workflow webhook.
type N8NClient struct {
	url    string
	secret string
	client *http.Client
	now    func() time.Time
}

// NewN8NClient builds a client for url.
func NewN8NClient(url, secret string, timeout time.Duration) *N8NClient {
	return &N8NClient{url: url, secret: secret, client: newHTTPClient(timeout), now: time.Now}
}

// Enabled reports whether the client has a target.
func (c *N8NClient) Enabled() bool {
	return c != nil && c.url != ""
}

// Post sends {eventType, sentAt, payload} and decodes the JSON reply.
func (c *N8NClient) Post(ctx context.Context, eventType string, payload any) (map[string]any, error) {
	if !c.Enabled() {
		return nil, ErrN8NDisabled
	}
	headers := map[string]string{}
	if c.secret != "" {
		headers["x-n8n-secret"] = c.secret
	}
	envelope := map[string]any{
		"eventType": eventType,
		"sentAt":    c.now().UTC().Format(time.RFC3339),
		"payload":   payload,
	}
	raw, err := postJSON(ctx, c.client, c.url, envelope, headers)
	body := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	if err != nil {
		if msg, ok := body["error"].(string); ok && msg != "" {
			return nil, errors.New(msg)
		}
		return nil, fmt.Errorf("n8n %w", err)
	}
	return body, nil
}

// Provider adapts the client to notification delivery.
func (c *N8NClient) Provider() Provider {
	return n8nProvider{client: c}
}

type n8nProvider struct {
	client *N8NClient
}

func (p n8nProvider) Name() string { return "n8n" }

func (p n8nProvider) Send(ctx context.Context, n domain.Notification) error {
	_, err := p.client.Post(ctx, "admin_notification", map[string]any{
		"notification": n,
		"text":         FormatText(n),
	})
	return err
}
