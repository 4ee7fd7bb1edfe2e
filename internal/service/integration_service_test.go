package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/integrations"
	"github.com/spec-kit/gatelaunch/internal/worker"
)

type stubProvider struct {
	name string
	err  error
	got  []domain.Notification
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Send(_ context.Context, n domain.Notification) error {
	p.got = append(p.got, n)
	return p.err
}

func TestIntegrationTestDispatchesToEveryProvider(t *testing.T) {
	ok := &stubProvider{name: "slack"}
	failing := &stubProvider{name: "webhook", err: errors.New("HTTP 500")}
	providers := []integrations.Provider{ok, failing}
	svc := NewIntegrationService(IntegrationDependencies{
		Registry:   &integrations.Registry{Providers: providers},
		Dispatcher: worker.NewDispatcher(providers, 4, time.Second, zap.NewNop()),
		Now:        clock,
	})

	_, err := svc.Test(context.Background(), principal("s1", domain.RoleSupervisor))
	requireStatus(t, err, 403)

	results, err := svc.Test(context.Background(), principal("a1", domain.RoleAdmin))
	require.NoError(t, err)
	require.Len(t, results, 2)
	byName := map[string]integrations.Result{}
	for _, r := range results {
		byName[r.Provider] = r
	}
	assert.True(t, byName["slack"].OK)
	assert.False(t, byName["webhook"].OK)
	assert.Equal(t, "HTTP 500", byName["webhook"].Error)
	require.Len(t, ok.got, 1)
	assert.Equal(t, domain.NotificationIntegrationTest, ok.got[0].Type)
	assert.NotEmpty(t, svc.Recent())
}

func TestIntegrationChecksRequireConfiguration(t *testing.T) {
	svc := NewIntegrationService(IntegrationDependencies{
		Registry:   &integrations.Registry{},
		Dispatcher: worker.NewDispatcher(nil, 1, time.Second, zap.NewNop()),
		Now:        clock,
	})
	_, err := svc.TelegramCheck(context.Background())
	requireStatus(t, err, 400)
	_, err = svc.TelegramTest(context.Background(), "")
	requireStatus(t, err, 400)
	_, err = svc.N8NCheck(context.Background(), principal("a1", domain.RoleAdmin))
	requireStatus(t, err, 400)

	results, err := svc.Test(context.Background(), principal("a1", domain.RoleAdmin))
	require.NoError(t, err)
	assert.Empty(t, results)
}
