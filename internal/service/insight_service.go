package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/config"
	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/integrations"
	"github.com/spec-kit/gatelaunch/internal/repository"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

const (
	engineWorkflow = "n8n+heuristic-fallback"
	engineLocal    = "heuristic-local"
	minSyncGap     = 30 * time.Second
)

// SyncOptions controls one AI sync run.
type SyncOptions struct {
	Source string
	Actor  *auth.Principal
	Force  bool
}

// SyncResult is returned by Sync.
type SyncResult struct {
	Skipped      bool                 `json:"skipped"`
	Reason       string               `json:"reason,omitempty"`
	Notification *domain.Notification `json:"notification,omitempty"`
	Insights     Insights             `json:"insights"`
}

// SyncOutcome is the compact record of the last run.
type SyncOutcome struct {
	Skipped        bool      `json:"skipped"`
	Reason         string    `json:"reason,omitempty"`
	At             time.Time `json:"at"`
	NotificationID string    `json:"notificationId,omitempty"`
}

// SyncStatus is served by the AI status endpoint.
type SyncStatus struct {
	Enabled            bool         `json:"enabled"`
	IntervalMs         int64        `json:"intervalMs"`
	LastRunAt          *time.Time   `json:"lastRunAt"`
	LastNotificationID string       `json:"lastNotificationId"`
	Engine             string       `json:"engine"`
	LastResult         *SyncOutcome `json:"lastResult"`
}

// AssistantReply is the answer to a chat message.
type AssistantReply struct {
	Answer         string         `json:"answer"`
	Source         string         `json:"source"`
	FallbackReason string         `json:"fallbackReason,omitempty"`
	Raw            map[string]any `json:"raw,omitempty"`
}

// InsightService builds insights, runs the AI sync and answers assistant chats.
type InsightService struct {
	store     *repository.Store
	publisher Publisher
	n8n       *integrations.N8NClient
	cfg       config.AISyncConfig
	logger    *zap.Logger
	now       Clock

	mu            sync.Mutex
	lastRunAt     *time.Time
	lastSignature string
	lastNotifID   string
	lastResult    *SyncOutcome
}

// InsightDependencies bundles collaborators for the insight service.
type InsightDependencies struct {
	Store     *repository.Store
	Publisher Publisher
	N8N       *integrations.N8NClient
	Config    config.AISyncConfig
	Logger    *zap.Logger
	Now       Clock
}

// NewInsightService constructs the service. N8N is optional.
func NewInsightService(deps InsightDependencies) *InsightService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightService{
		store:     deps.Store,
		publisher: deps.Publisher,
		n8n:       deps.N8N,
		cfg:       deps.Config,
		logger:    logger,
		now:       deps.Now.orSystem(),
	}
}

// Build computes insights for caller from the current repository state.
func (s *InsightService) Build(ctx context.Context, caller *auth.Principal) (Insights, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return Insights{}, err
	}
	return ComputeInsights(snap, s.now(), caller), nil
}

func (s *InsightService) snapshot(ctx context.Context) (Snapshot, error) {
	orders, err := s.store.Orders.List(ctx)
	if err != nil {
		return Snapshot{}, apperrors.NewStorageFailure(err)
	}
	tickets, err := s.store.Tickets.List(ctx)
	if err != nil {
		return Snapshot{}, apperrors.NewStorageFailure(err)
	}
	receipts, err := s.store.Receipts.List(ctx)
	if err != nil {
		return Snapshot{}, apperrors.NewStorageFailure(err)
	}
	return Snapshot{Users: s.store.Users.Count(), Orders: orders, Tickets: tickets, Receipts: receipts}, nil
}

// Sync publishes an AI report unless nothing changed since a recent run.
func (s *InsightService) Sync(ctx context.Context, opts SyncOptions) (SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	insights, err := s.Build(ctx, nil)
	if err != nil {
		return SyncResult{}, err
	}
	now := s.now().UTC()
	signature := insights.Signature()
	recent := s.lastRunAt != nil && now.Sub(*s.lastRunAt) < s.dedupeWindow()

	if !opts.Force && recent && signature == s.lastSignature {
		s.lastResult = &SyncOutcome{Skipped: true, Reason: "No significant changes", At: now}
		return SyncResult{Skipped: true, Reason: "No significant changes", Insights: insights}, nil
	}

	source := opts.Source
	if source == "" {
		source = "system"
	}
	triggeredBy := "system"
	if opts.Actor != nil {
		triggeredBy = opts.Actor.User.Email
	}
	n, err := s.publisher.Publish(ctx, NotificationInput{
		Type:  domain.NotificationAISyncReport,
		Title: "AI Sync Report",
		Message: fmt.Sprintf("Health %s | pending orders %d | open tickets %d",
			strings.ToUpper(insights.Health.Level), insights.Health.PendingOrders, insights.Health.OpenTickets),
		Details: map[string]any{
			"source":        source,
			"triggeredBy":   triggeredBy,
			"healthScore":   insights.Health.Score,
			"approvalRate":  fmt.Sprintf("%d%%", insights.Health.ApprovalRate),
			"pendingOrders": insights.Health.PendingOrders,
			"openTickets":   insights.Health.OpenTickets,
			"generatedAt":   insights.GeneratedAt.Format(time.RFC3339),
		},
	})
	if err != nil {
		return SyncResult{}, err
	}

	s.lastRunAt = &now
	s.lastSignature = signature
	s.lastNotifID = n.ID
	s.lastResult = &SyncOutcome{At: now, NotificationID: n.ID}
	return SyncResult{Notification: &n, Insights: insights}, nil
}

// ManualSync runs Sync on behalf of an admin.
func (s *InsightService) ManualSync(ctx context.Context, caller *auth.Principal, force bool) (SyncResult, error) {
	if err := requireAdmin(caller); err != nil {
		return SyncResult{}, err
	}
	if !s.cfg.Enabled {
		return SyncResult{}, apperrors.NewValidationError("AI sync disabled")
	}
	return s.Sync(ctx, SyncOptions{Source: "manual", Actor: caller, Force: force})
}

// SyncTask adapts Sync for the scheduler.
func (s *InsightService) SyncTask(source string) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := s.Sync(ctx, SyncOptions{Source: source})
		if err != nil {
			return err
		}
		s.logger.Debug("ai sync finished", zap.String("source", source), zap.Bool("skipped", res.Skipped))
		return nil
	}
}

// Enabled reports whether the AI sync may run.
func (s *InsightService) Enabled() bool {
	return s.cfg.Enabled
}

func (s *InsightService) dedupeWindow() time.Duration {
	return max(minSyncGap, s.cfg.Interval/2)
}

// Status reports the sync configuration and last outcome.
func (s *InsightService) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	engine := engineLocal
	if s.n8n.Enabled() {
		engine = engineWorkflow
	}
	status := SyncStatus{
		Enabled:            s.cfg.Enabled,
		IntervalMs:         s.cfg.Interval.Milliseconds(),
		LastNotificationID: s.lastNotifID,
		Engine:             engine,
	}
	if s.lastRunAt != nil {
		at := *s.lastRunAt
		status.LastRunAt = &at
	}
	if s.lastResult != nil {
		res := *s.lastResult
		status.LastResult = &res
	}
	return status
}

var (
	sessionScopes = map[string]bool{"dashboard": true, "admin": true, "landing": true}
	publicScopes  = map[string]bool{"landing": true, "public": true}
)

// Assistant answers a signed-in caller. Scope defaults to dashboard.
func (s *InsightService) Assistant(ctx context.Context, caller *auth.Principal, message, scope string) (AssistantReply, error) {
	message = sanitizeText(message, 1200)
	scope = strings.ToLower(sanitizeText(scope, 40))
	if scope == "" {
		scope = "dashboard"
	}
	if message == "" {
		return AssistantReply{}, apperrors.NewValidationError("Invalid message")
	}
	if !sessionScopes[scope] {
		return AssistantReply{}, apperrors.NewValidationError("Invalid scope")
	}
	insights, err := s.Build(ctx, caller)
	if err != nil {
		return AssistantReply{}, err
	}
	if !s.n8n.Enabled() {
		return LocalReply(message, insights), nil
	}

	payload := map[string]any{"message": message, "scope": scope, "insights": insights}
	if caller != nil {
		payload["user"] = caller.User.Public()
	}
	raw, err := s.n8n.Post(ctx, "assistant_chat", payload)
	if err != nil {
		reply := LocalReply(message, insights)
		reply.FallbackReason = err.Error()
		return reply, nil
	}
	answer := workflowAnswer(raw)
	if answer == "" {
		answer = LocalReply(message, insights).Answer
	}
	return AssistantReply{Answer: answer, Source: "n8n", Raw: raw}, nil
}

// PublicAssistant answers an anonymous visitor. Scope defaults to landing.
func (s *InsightService) PublicAssistant(ctx context.Context, message, scope string) (AssistantReply, error) {
	message = sanitizeText(message, 800)
	scope = strings.ToLower(strings.TrimSpace(scope))
	if scope == "" {
		scope = "landing"
	}
	if message == "" {
		return AssistantReply{}, apperrors.NewValidationError("Invalid message")
	}
	if !publicScopes[scope] {
		return AssistantReply{}, apperrors.NewValidationError("Invalid scope")
	}
	insights, err := s.Build(ctx, nil)
	if err != nil {
		return AssistantReply{}, err
	}
	if !s.n8n.Enabled() {
		return AssistantReply{Answer: LocalReply(message, insights).Answer, Source: "public-fallback"}, nil
	}

	raw, err := s.n8n.Post(ctx, "public_assistant_chat", map[string]any{
		"message":  message,
		"scope":    scope,
		"insights": map[string]any{"health": insights.Health, "platform": insights.Platform},
	})
	if err != nil {
		return AssistantReply{
			Answer:         LocalReply(message, insights).Answer,
			Source:         "public-fallback",
			FallbackReason: err.Error(),
		}, nil
	}
	answer := workflowAnswer(raw)
	if answer == "" {
		answer = LocalReply(message, insights).Answer
	}
	return AssistantReply{Answer: answer, Source: "n8n-public"}, nil
}

func workflowAnswer(raw map[string]any) string {
	for _, key := range []string{"answer", "message"} {
		if v, ok := raw[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// LocalReply builds a deterministic answer from keywords in message.
func LocalReply(message string, insights Insights) AssistantReply {
	text := strings.ToLower(strings.TrimSpace(message))
	var lines []string
	if text == "" {
		lines = append(lines, "Write your question and I will help with payments, orders, and support flow.")
	}
	if containsAny(text, "status", "health", "حالة") {
		lines = append(lines, fmt.Sprintf("Current platform health is %s (%d/100).", insights.Health.Level, insights.Health.Score))
	}
	if containsAny(text, "payment", "دفع", "wallet") {
		lines = append(lines, "InstaPay transfers use 01147794004. All other wallets use 01143813016. Upload proof before confirm.")
	}
	if containsAny(text, "order", "طلب", "top-up") {
		lines = append(lines, fmt.Sprintf("Pending orders: %d. Open tickets: %d.", insights.Health.PendingOrders, insights.Health.OpenTickets))
	}
	if len(lines) == 0 {
		lines = append(lines, fmt.Sprintf("I can help with payments, order tracking, and support. Current health score: %d/100.", insights.Health.Score))
	}
	if len(insights.Recommendations) > 0 {
		lines = append(lines, "Recommendation: "+insights.Recommendations[0])
	}
	return AssistantReply{Answer: strings.Join(lines, " "), Source: "local-fallback"}
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func formatSignature(pending, open, orders24h, receipts24h int) string {
	return fmt.Sprintf("%d|%d|%d|%d", pending, open, orders24h, receipts24h)
}
