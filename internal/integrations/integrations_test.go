package integrations

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/config"
	"github.com/spec-kit/gatelaunch/internal/domain"
)

func sampleNotification() domain.Notification {
	return domain.Notification{
		ID:        "n-1",
		Scope:     domain.ScopeAdmin,
		Type:      domain.NotificationOrderCreated,
		Title:     "New game top-up order",
		Message:   "Mona submitted PUBG order for 150 EGP",
		Details:   map[string]any{"orderId": "o-1", "email": "mona@example.com"},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

type captured struct {
	header http.Header
	body   map[string]any
}

func captureServer(t *testing.T, status int, reply string) (*httptest.Server, <-chan captured) {
	t.Helper()
	ch := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		ch <- captured{header: r.Header.Clone(), body: body}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func TestFormatTextSortsDetails(t *testing.T) {
	text := FormatText(sampleNotification())
	assert.Equal(t, "New game top-up order\nMona submitted PUBG order for 150 EGP\nemail: mona@example.com\norderId: o-1", text)
}

func TestSlackPostsText(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK, "ok")
	p := NewSlackProvider(srv.URL, time.Second)

	require.NoError(t, p.Send(context.Background(), sampleNotification()))
	req := <-got
	assert.True(t, strings.HasPrefix(req.body["text"].(string), "New game top-up order"))
}

func TestSlackNon2xxIsError(t *testing.T) {
	srv, _ := captureServer(t, http.StatusInternalServerError, "")
	p := NewSlackProvider(srv.URL, time.Second)

	err := p.Send(context.Background(), sampleNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestWebhookSignsRequest(t *testing.T) {
	srv, got := captureServer(t, http.StatusNoContent, "")
	signer := auth.NewTokenManager("s3cret", time.Minute)
	p := NewWebhookProvider(srv.URL, "s3cret", signer, time.Second)

	require.NoError(t, p.Send(context.Background(), sampleNotification()))
	req := <-got

	assert.Equal(t, "s3cret", req.header.Get(WebhookSecretHeader))
	notification, ok := req.body["notification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "n-1", notification["id"])

	token := strings.TrimPrefix(req.header.Get("Authorization"), "Bearer ")
	claims, err := signer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "n-1", claims.NotificationID)
	assert.Equal(t, "order_created", claims.EventType)
}

func TestWebhookWithoutSecretOmitsHeaders(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK, "")
	p := NewWebhookProvider(srv.URL, "", nil, time.Second)

	require.NoError(t, p.Send(context.Background(), sampleNotification()))
	req := <-got
	assert.Empty(t, req.header.Get(WebhookSecretHeader))
	assert.Empty(t, req.header.Get("Authorization"))
}

func TestN8NPostEnvelope(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK, `{"answer":"hello"}`)
	c := NewN8NClient(srv.URL, "wf-secret", time.Second)

	reply, err := c.Post(context.Background(), "assistant_query", map[string]any{"message": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", reply["answer"])

	req := <-got
	assert.Equal(t, "wf-secret", req.header.Get("x-n8n-secret"))
	assert.Equal(t, "assistant_query", req.body["eventType"])
	assert.NotEmpty(t, req.body["sentAt"])
	payload := req.body["payload"].(map[string]any)
	assert.Equal(t, "hi", payload["message"])
}

func TestN8NErrorBodySurfaces(t *testing.T) {
	srv, _ := captureServer(t, http.StatusBadGateway, `{"error":"workflow inactive"}`)
	c := NewN8NClient(srv.URL, "", time.Second)

	_, err := c.Post(context.Background(), "ping", nil)
	require.EqualError(t, err, "workflow inactive")
}

func TestN8NDisabled(t *testing.T) {
	var c *N8NClient
	_, err := c.Post(context.Background(), "ping", nil)
	require.ErrorIs(t, err, ErrN8NDisabled)
}

func fakeTelegram(t *testing.T) (*httptest.Server, <-chan string) {
	t.Helper()
	calls := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		calls <- method
		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "getMe":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"username":"gl_bot"}}`))
		case "getChat":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":-100,"type":"supergroup","title":"Ops"}}`))
		case "sendMessage":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":42,"date":0,"chat":{"id":-100,"type":"supergroup"}}}`))
		default:
			_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func TestTelegramSendAndCheck(t *testing.T) {
	srv, calls := fakeTelegram(t)
	p, err := NewTelegramProvider("123:abc", "-100", srv.URL, time.Second)
	require.NoError(t, err)

	id, err := p.SendText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 42, id)
	assert.Equal(t, "sendMessage", <-calls)

	check := p.Check(context.Background())
	assert.True(t, check.OK)
	assert.Equal(t, "gl_bot", check.BotUsername)
	assert.Equal(t, "Ops", check.ChatTitle)
	assert.Equal(t, "supergroup", check.ChatType)
}

func TestTelegramRequiresSettings(t *testing.T) {
	_, err := NewTelegramProvider("", "1", "", time.Second)
	require.Error(t, err)
}

func TestRegistryOnlyBuildsConfiguredProviders(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "json"
	cfg.Integrations.SlackWebhookURL = "http://127.0.0.1:1/slack"
	cfg.Integrations.N8NWebhookURL = "http://127.0.0.1:1/n8n"

	reg, err := NewRegistry(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	names := []string{}
	for _, p := range reg.Providers {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"slack", "n8n"}, names)
	status := reg.Status()
	assert.True(t, status.Slack)
	assert.True(t, status.N8N)
	assert.False(t, status.Telegram)
	assert.False(t, status.Kafka)
	assert.Equal(t, "json", status.Storage)
	assert.Nil(t, reg.Telegram)
}
