package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/spec-kit/gatelaunch/internal/config"
	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/integrations"
)

func snapshotWith(orders, pendingOrders, tickets, openTickets int) Snapshot {
	var snap Snapshot
	for i := 0; i < orders; i++ {
		status := domain.ReviewApproved
		if i < pendingOrders {
			status = domain.ReviewPending
		}
		snap.Orders = append(snap.Orders, domain.Order{
			ID: fmt.Sprintf("o%d", i), UserID: "u1", Amount: 100, Status: status,
			CreatedAt: fixedNow.Add(-48 * time.Hour),
		})
	}
	for i := 0; i < tickets; i++ {
		status := domain.TicketStatusClosed
		if i < openTickets {
			status = domain.TicketStatusOpen
		}
		snap.Tickets = append(snap.Tickets, domain.Ticket{ID: fmt.Sprintf("t%d", i), Status: status, CreatedAt: fixedNow})
	}
	return snap
}

func TestHealthScoreWorkedExample(t *testing.T) {
	score := HealthScore(10, 3, 5, 2, 0)
	assert.Equal(t, 73, score)
	assert.Equal(t, LevelWatch, HealthLevel(score))

	insights := ComputeInsights(snapshotWith(10, 3, 5, 2), fixedNow, nil)
	assert.Equal(t, 73, insights.Health.Score)
	assert.Equal(t, LevelWatch, insights.Health.Level)
	assert.Equal(t, 3, insights.Health.PendingOrders)
	assert.Equal(t, 2, insights.Health.OpenTickets)
	assert.Equal(t, 100, insights.Health.ApprovalRate)
	assert.Equal(t, 0, insights.Platform.OrdersLast24h)
	assert.Nil(t, insights.User)
}

func TestHealthScoreEmptyStoreIsHealthy(t *testing.T) {
	insights := ComputeInsights(Snapshot{}, fixedNow, nil)
	assert.Equal(t, 100, insights.Health.Score)
	assert.Equal(t, LevelHealthy, insights.Health.Level)
	assert.Equal(t, []string{recsStable}, insights.Recommendations)
}

func TestHealthScoreStaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(0, 500).Draw(t, "orders")
		pending := rapid.IntRange(0, total).Draw(t, "pending")
		tickets := rapid.IntRange(0, 500).Draw(t, "tickets")
		open := rapid.IntRange(0, tickets).Draw(t, "open")
		receipts := rapid.IntRange(0, 10000).Draw(t, "receipts")

		score := HealthScore(total, pending, tickets, open, receipts)
		if score < 0 || score > 100 {
			t.Fatalf("score %d out of range", score)
		}
		level := HealthLevel(score)
		if level != LevelHealthy && level != LevelWatch && level != LevelCritical {
			t.Fatalf("unexpected level %q", level)
		}
	})
}

func TestComputeInsightsUserBlock(t *testing.T) {
	snap := snapshotWith(4, 1, 0, 0)
	snap.Orders[3].UserID = "u2"
	insights := ComputeInsights(snap, fixedNow, principal("u1", domain.RoleUser))
	require.NotNil(t, insights.User)
	assert.Equal(t, "user", insights.Scope)
	assert.Equal(t, 3, insights.User.Orders)
	assert.Equal(t, 1, insights.User.PendingOrders)
	assert.Equal(t, 2, insights.User.ApprovedOrders)

	staff := ComputeInsights(snap, fixedNow, principal("s1", domain.RoleSupervisor))
	assert.Equal(t, "staff", staff.Scope)
	assert.Nil(t, staff.User)
}

func TestRecommendationsThresholds(t *testing.T) {
	insights := ComputeInsights(snapshotWith(20, 8, 6, 6), fixedNow, nil)
	assert.Contains(t, insights.Recommendations, recsPendingOrders)
	assert.Contains(t, insights.Recommendations, recsOpenTickets)
	assert.NotContains(t, insights.Recommendations, recsStable)
}

type insightFixture struct {
	*fixture
	svc *InsightService
	now time.Time
}

func newInsightFixture(t *testing.T, n8n *integrations.N8NClient) *insightFixture {
	f := &insightFixture{fixture: newFixture(t), now: fixedNow}
	f.svc = NewInsightService(InsightDependencies{
		Store:     f.store,
		Publisher: f.notifications,
		N8N:       n8n,
		Config:    config.AISyncConfig{Enabled: true, Interval: 5 * time.Minute},
		Now:       func() time.Time { return f.now },
	})
	return f
}

func TestSyncSkipsUnchangedState(t *testing.T) {
	f := newInsightFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.Sync(ctx, SyncOptions{Source: "interval"})
	require.NoError(t, err)
	assert.False(t, first.Skipped)
	require.NotNil(t, first.Notification)
	assert.Equal(t, domain.NotificationAISyncReport, first.Notification.Type)

	f.now = f.now.Add(time.Minute)
	second, err := f.svc.Sync(ctx, SyncOptions{Source: "interval"})
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Equal(t, "No significant changes", second.Reason)

	forced, err := f.svc.Sync(ctx, SyncOptions{Source: "manual", Force: true})
	require.NoError(t, err)
	assert.False(t, forced.Skipped)

	f.now = f.now.Add(3 * time.Minute)
	late, err := f.svc.Sync(ctx, SyncOptions{Source: "interval"})
	require.NoError(t, err)
	assert.False(t, late.Skipped)

	assert.Equal(t, 3, f.notificationCount(t))
	status := f.svc.Status()
	assert.Equal(t, late.Notification.ID, status.LastNotificationID)
	assert.Equal(t, "heuristic-local", status.Engine)
}

func TestSyncRunsWhenStateChanges(t *testing.T) {
	f := newInsightFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.Sync(ctx, SyncOptions{})
	require.NoError(t, err)

	require.NoError(t, f.store.Tickets.Create(ctx, domain.Ticket{ID: "t1", Status: domain.TicketStatusOpen, CreatedAt: f.now, UserID: "u1"}))
	res, err := f.svc.Sync(ctx, SyncOptions{})
	require.NoError(t, err)
	assert.False(t, res.Skipped)
}

func TestManualSyncRequiresAdmin(t *testing.T) {
	f := newInsightFixture(t, nil)
	_, err := f.svc.ManualSync(context.Background(), principal("s1", domain.RoleSupervisor), true)
	requireStatus(t, err, 403)
	assert.Equal(t, 0, f.notificationCount(t))
}

func TestAssistantFallsBackLocally(t *testing.T) {
	f := newInsightFixture(t, nil)
	reply, err := f.svc.Assistant(context.Background(), principal("u1", domain.RoleUser), "what is the health status?", "")
	require.NoError(t, err)
	assert.Equal(t, "local-fallback", reply.Source)
	assert.Contains(t, reply.Answer, "Current platform health is healthy (100/100).")

	_, err = f.svc.Assistant(context.Background(), principal("u1", domain.RoleUser), "hi", "galaxy")
	requireStatus(t, err, 400)
	_, err = f.svc.PublicAssistant(context.Background(), "   ", "")
	requireStatus(t, err, 400)
}

func TestAssistantUsesWorkflowReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"  from workflow "}`))
	}))
	defer server.Close()

	f := newInsightFixture(t, integrations.NewN8NClient(server.URL, "s3cret", 3*time.Second))
	reply, err := f.svc.PublicAssistant(context.Background(), "payment options?", "public")
	require.NoError(t, err)
	assert.Equal(t, "n8n-public", reply.Source)
	assert.Equal(t, "from workflow", reply.Answer)
	assert.Equal(t, "n8n+heuristic-fallback", f.svc.Status().Engine)
}

func TestAssistantWorkflowFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := newInsightFixture(t, integrations.NewN8NClient(server.URL, "", 3*time.Second))
	reply, err := f.svc.Assistant(context.Background(), principal("u1", domain.RoleUser), "order status", "dashboard")
	require.NoError(t, err)
	assert.Equal(t, "local-fallback", reply.Source)
	assert.NotEmpty(t, reply.FallbackReason)
}

func TestLocalReplyKeywords(t *testing.T) {
	insights := ComputeInsights(snapshotWith(10, 3, 5, 2), fixedNow, nil)
	reply := LocalReply("payment for my order", insights)
	assert.Contains(t, reply.Answer, "01147794004")
	assert.Contains(t, reply.Answer, "Pending orders: 3. Open tickets: 2.")

	generic := LocalReply("hello", insights)
	assert.Contains(t, generic.Answer, "Current health score: 73/100.")
}
