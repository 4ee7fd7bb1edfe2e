package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/integrations"
	"github.com/spec-kit/gatelaunch/internal/worker"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

// TelegramTestResult is returned after sending a test message.
type TelegramTestResult struct {
	Success   bool   `json:"success"`
	MessageID int    `json:"messageId"`
	ChatID    string `json:"chatId"`
}

// IntegrationService exposes provider diagnostics to admins.
type IntegrationService struct {
	registry   *integrations.Registry
	dispatcher *worker.Dispatcher
	chatID     string
	now        Clock
}

// IntegrationDependencies bundles collaborators for the integration service.
type IntegrationDependencies struct {
	Registry       *integrations.Registry
	Dispatcher     *worker.Dispatcher
	TelegramChatID string
	Now            Clock
}

// NewIntegrationService constructs the service.
func NewIntegrationService(deps IntegrationDependencies) *IntegrationService {
	return &IntegrationService{
		registry:   deps.Registry,
		dispatcher: deps.Dispatcher,
		chatID:     deps.TelegramChatID,
		now:        deps.Now.orSystem(),
	}
}

// Status reports which providers are configured and how many queued
// dispatches were dropped.
func (s *IntegrationService) Status() integrations.Status {
	st := s.registry.Status()
	st.DispatchDropped = s.dispatcher.Dropped()
	return st
}

// Test delivers a synthetic notification to every provider and waits for the results.
// The notification is not stored.
func (s *IntegrationService) Test(ctx context.Context, caller *auth.Principal) ([]integrations.Result, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	n := domain.Notification{
		ID:        newID(),
		Scope:     domain.ScopeAdmin,
		Type:      domain.NotificationIntegrationTest,
		Title:     "Integration test",
		Message:   fmt.Sprintf("Manual test triggered by %s", caller.User.Name),
		Details:   map[string]any{"at": s.now().UTC().Format(time.RFC3339), "by": caller.User.Email},
		CreatedAt: s.now().UTC(),
	}
	results := s.dispatcher.DispatchNow(ctx, n)
	if results == nil {
		results = []integrations.Result{}
	}
	return results, nil
}

// Recent returns the latest dispatch outcomes.
func (s *IntegrationService) Recent() []worker.DispatchRecord {
	return s.dispatcher.Recent()
}

// TelegramCheck verifies the bot token and chat.
func (s *IntegrationService) TelegramCheck(ctx context.Context) (integrations.TelegramCheck, error) {
	if s.registry.Telegram == nil {
		return integrations.TelegramCheck{}, apperrors.NewValidationError("Telegram integration is not configured")
	}
	check := s.registry.Telegram.Check(ctx)
	if !check.OK {
		return check, apperrors.NewValidationError(check.Error)
	}
	return check, nil
}

// TelegramTest sends text, or a stamped default, to the configured chat.
func (s *IntegrationService) TelegramTest(ctx context.Context, text string) (TelegramTestResult, error) {
	if s.registry.Telegram == nil {
		return TelegramTestResult{}, apperrors.NewValidationError("Telegram integration is not configured")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = "GateLaunch test message - " + s.now().UTC().Format(time.RFC3339)
	}
	id, err := s.registry.Telegram.SendText(ctx, text)
	if err != nil {
		return TelegramTestResult{}, apperrors.NewValidationError(err.Error())
	}
	return TelegramTestResult{Success: true, MessageID: id, ChatID: s.chatID}, nil
}

// N8NCheck posts a health_check event and returns the workflow reply.
func (s *IntegrationService) N8NCheck(ctx context.Context, caller *auth.Principal) (map[string]any, error) {
	if !s.registry.N8N.Enabled() {
		return nil, apperrors.NewValidationError(integrations.ErrN8NDisabled.Error())
	}
	payload := map[string]any{}
	if caller != nil {
		payload["by"] = caller.User.Email
		payload["role"] = string(caller.Role())
	}
	reply, err := s.registry.N8N.Post(ctx, "health_check", payload)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return reply, nil
}
