package integrations

import (
	"context"
	"net/http"
	"time"

	"github.com/spec-kit/gatelaunch/internal/domain"
)

// SlackProvider posts to an incoming-webhook URL.
type SlackProvider struct {
	url    string
	client *http.Client
}

// NewSlackProvider builds a provider for url.
func NewSlackProvider(url string, timeout time.Duration) *SlackProvider {
	return &SlackProvider{url: url, client: newHTTPClient(timeout)}
}

func (p *SlackProvider) Name() string { return "slack" }

func (p *SlackProvider) Send(ctx context.Context, n domain.Notification) error {
	_, err := postJSON(ctx, p.client, p.url, map[string]string{"text": FormatText(n)}, nil)
	return err
}
