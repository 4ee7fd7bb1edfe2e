package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/repository"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

// SupportRequestInput is a public contact form submission.
type SupportRequestInput struct {
	Name    string
	Email   string
	Channel string
	Message string
	Source  string
}

// SupportService accepts unauthenticated support requests.
type SupportService struct {
	requests  repository.SupportRequestRepository
	publisher Publisher
	now       Clock
}

// SupportDependencies bundles collaborators for the support service.
type SupportDependencies struct {
	SupportRepo repository.SupportRequestRepository
	Publisher   Publisher
	Now         Clock
}

// NewSupportService constructs the service.
func NewSupportService(deps SupportDependencies) *SupportService {
	return &SupportService{requests: deps.SupportRepo, publisher: deps.Publisher, now: deps.Now.orSystem()}
}

// Submit stores a request with status "new" and notifies staff.
func (s *SupportService) Submit(ctx context.Context, in SupportRequestInput) (domain.SupportRequest, error) {
	name := sanitizeText(in.Name, 120)
	email := normalizeEmail(in.Email)
	message := sanitizeText(in.Message, 1200)
	channelRaw := in.Channel
	if strings.TrimSpace(channelRaw) == "" {
		channelRaw = string(domain.ChannelWhatsApp)
	}
	sourceRaw := in.Source
	if strings.TrimSpace(sourceRaw) == "" {
		sourceRaw = "landing"
	}
	if name == "" || message == "" || !isValidEmail(email) {
		return domain.SupportRequest{}, apperrors.NewValidationError("Missing required fields")
	}
	channel, ok := domain.ParseContactChannel(strings.ToLower(sanitizeText(channelRaw, 32)))
	if !ok {
		return domain.SupportRequest{}, apperrors.NewValidationError("Invalid contact channel")
	}

	request := domain.SupportRequest{
		ID:        newID(),
		Name:      name,
		Email:     email,
		Channel:   channel,
		Message:   message,
		Source:    strings.ToLower(sanitizeText(sourceRaw, 40)),
		Status:    "new",
		CreatedAt: s.now().UTC(),
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return domain.SupportRequest{}, apperrors.NewStorageFailure(err)
	}

	_, err := s.publisher.Publish(ctx, NotificationInput{
		Type:    domain.NotificationSupportRequest,
		Title:   "New landing support request",
		Message: fmt.Sprintf("%s submitted a new support request", request.Name),
		Details: map[string]any{
			"requestId": request.ID,
			"name":      request.Name,
			"email":     request.Email,
			"channel":   string(request.Channel),
			"source":    request.Source,
			"message":   request.Message,
		},
	})
	if err != nil {
		return domain.SupportRequest{}, discardCreated(ctx, s.requests, request.ID, err)
	}
	return request, nil
}

// List returns every support request. Staff only.
func (s *SupportService) List(ctx context.Context, caller *auth.Principal) ([]domain.SupportRequest, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	items, err := s.requests.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return items, nil
}
