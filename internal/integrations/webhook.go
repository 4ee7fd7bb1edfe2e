package integrations

import (
	"context"
	"net/http"
	"time"

	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/domain"
)

// WebhookSecretHeader carries the shared admin webhook secret.
const WebhookSecretHeader = "x-admin-webhook-secret"

// WebhookProvider posts the full notification to an admin endpoint. When a
// secret is configured the request carries it plus a signed bearer token.
type WebhookProvider struct {
	url    string
	secret string
	signer *auth.TokenManager
	client *http.Client
}

// NewWebhookProvider builds a provider. signer may be nil.
func NewWebhookProvider(url, secret string, signer *auth.TokenManager, timeout time.Duration) *WebhookProvider {
	return &WebhookProvider{url: url, secret: secret, signer: signer, client: newHTTPClient(timeout)}
}

func (p *WebhookProvider) Name() string { return "webhook" }

func (p *WebhookProvider) Send(ctx context.Context, n domain.Notification) error {
	headers := map[string]string{}
	if p.secret != "" {
		headers[WebhookSecretHeader] = p.secret
	}
	if p.signer != nil {
		token, _, err := p.signer.GenerateToken(n.ID, string(n.Type))
		if err != nil {
			return err
		}
		headers["Authorization"] = "Bearer " + token
	}
	_, err := postJSON(ctx, p.client, p.url, map[string]any{"notification": n}, headers)
	return err
}
