package integrations

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/config"
	"github.com/spec-kit/gatelaunch/internal/domain"
)

// Provider delivers a notification to one external system.
type Provider interface {
	Name() string
	Send(ctx context.Context, n domain.Notification) error
}

// Result is the outcome of one delivery attempt.
type Result struct {
	Provider string `json:"provider"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// Status reports which providers are configured.
type Status struct {
	Telegram bool   `json:"telegram"`
	Slack    bool   `json:"slack"`
	Webhook  bool   `json:"webhook"`
	N8N      bool   `json:"n8n"`
	Kafka    bool   `json:"kafka"`
	AISync   bool   `json:"aiSync"`
	Storage  string `json:"storage"`

	DispatchDropped int64 `json:"dispatchDropped"`
}

// Registry holds the configured providers plus the clients used by diagnostics.
type Registry struct {
	Providers []Provider
	Telegram  *TelegramProvider
	N8N       *N8NClient
	kafka     *KafkaProvider
	status    Status
}

// NewRegistry builds every provider whose settings are present.
func NewRegistry(cfg *config.Config, logger *zap.Logger) (*Registry, error) {
	ic := cfg.Integrations
	r := &Registry{status: Status{AISync: cfg.AISync.Enabled, Storage: cfg.Storage.Driver}}

	if ic.TelegramToken != "" && ic.TelegramChatID != "" {
		tg, err := NewTelegramProvider(ic.TelegramToken, ic.TelegramChatID, "", ic.DispatchTimeout)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		r.Telegram = tg
		r.Providers = append(r.Providers, tg)
		r.status.Telegram = true
	}
	if ic.SlackWebhookURL != "" {
		r.Providers = append(r.Providers, NewSlackProvider(ic.SlackWebhookURL, ic.DispatchTimeout))
		r.status.Slack = true
	}
	if ic.WebhookURL != "" {
		var signer *auth.TokenManager
		if ic.WebhookSecret != "" {
			signer = auth.NewTokenManager(ic.WebhookSecret, 0)
		}
		r.Providers = append(r.Providers, NewWebhookProvider(ic.WebhookURL, ic.WebhookSecret, signer, ic.DispatchTimeout))
		r.status.Webhook = true
	}
	if ic.N8NWebhookURL != "" {
		r.N8N = NewN8NClient(ic.N8NWebhookURL, ic.N8NSecret, ic.N8NTimeout)
		r.Providers = append(r.Providers, r.N8N.Provider())
		r.status.N8N = true
	}
	if len(ic.KafkaBrokers) > 0 && ic.KafkaTopic != "" {
		r.kafka = NewKafkaProvider(ic.KafkaBrokers, ic.KafkaTopic)
		r.Providers = append(r.Providers, r.kafka)
		r.status.Kafka = true
	}

	names := make([]string, 0, len(r.Providers))
	for _, p := range r.Providers {
		names = append(names, p.Name())
	}
	logger.Info("integrations configured", zap.Strings("providers", names))
	return r, nil
}

// Status returns the provider configuration snapshot.
func (r *Registry) Status() Status {
	return r.status
}

// Close releases provider resources.
func (r *Registry) Close() error {
	if r.kafka != nil {
		return r.kafka.Close()
	}
	return nil
}

// FormatText renders a notification as plain text: title, message, then sorted details.
func FormatText(n domain.Notification) string {
	var b strings.Builder
	b.WriteString(n.Title)
	b.WriteString("\n")
	b.WriteString(n.Message)
	keys := make([]string, 0, len(n.Details))
	for k := range n.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %v", k, n.Details[k])
	}
	return b.String()
}
