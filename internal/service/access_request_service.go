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

// AccessRequestService handles requests for protected resources.
type AccessRequestService struct {
	requests  repository.AccessRequestRepository
	publisher Publisher
	now       Clock
}

// AccessRequestDependencies bundles collaborators for the access request service.
type AccessRequestDependencies struct {
	AccessRequestRepo repository.AccessRequestRepository
	Publisher         Publisher
	Now               Clock
}

// AccessRequestCreateInput describes an access request submission.
type AccessRequestCreateInput struct {
	Resource string
	UseCase  string
	Duration string
}

// NewAccessRequestService constructs the service.
func NewAccessRequestService(deps AccessRequestDependencies) *AccessRequestService {
	return &AccessRequestService{requests: deps.AccessRequestRepo, publisher: deps.Publisher, now: deps.Now.orSystem()}
}

// List returns the requests caller may see, newest first.
func (s *AccessRequestService) List(ctx context.Context, caller *auth.Principal) ([]domain.AccessRequest, error) {
	items, err := s.requests.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return auth.Visible(caller, items), nil
}

// Create stores a pending request for caller.
func (s *AccessRequestService) Create(ctx context.Context, caller *auth.Principal, in AccessRequestCreateInput) (domain.AccessRequest, error) {
	if caller == nil {
		return domain.AccessRequest{}, apperrors.NewUnauthorized("")
	}
	resource, ok := domain.ParseAccessResource(strings.ToLower(strings.TrimSpace(in.Resource)))
	useCase := sanitizeText(in.UseCase, 240)
	if !ok || useCase == "" {
		return domain.AccessRequest{}, apperrors.NewValidationError("Missing required fields")
	}
	duration := sanitizeText(in.Duration, 40)
	if duration == "" {
		duration = domain.DefaultAccessDuration
	}

	request := domain.AccessRequest{
		ID:        newID(),
		Resource:  resource,
		UseCase:   useCase,
		Duration:  duration,
		Status:    domain.ReviewPending,
		CreatedAt: s.now().UTC(),
		UserID:    caller.User.ID,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return domain.AccessRequest{}, apperrors.NewStorageFailure(err)
	}

	_, err := s.publisher.Publish(ctx, NotificationInput{
		Type:    domain.NotificationAccessRequestCreated,
		Title:   "New access request",
		Message: fmt.Sprintf("%s requested %s", caller.User.Name, request.Resource),
		Details: map[string]any{
			"accessRequestId": request.ID,
			"resource":        string(request.Resource),
			"useCase":         request.UseCase,
			"duration":        request.Duration,
			"createdBy":       caller.User.Name,
			"email":           caller.User.Email,
		},
	})
	if err != nil {
		return domain.AccessRequest{}, discardCreated(ctx, s.requests, request.ID, err)
	}
	return request, nil
}

// Review moves a request to status and records the reviewer. Staff only.
func (s *AccessRequestService) Review(ctx context.Context, caller *auth.Principal, id, status string) (domain.AccessRequest, error) {
	if err := requireStaff(caller); err != nil {
		return domain.AccessRequest{}, err
	}
	next, err := parseReviewStatus(status)
	if err != nil {
		return domain.AccessRequest{}, err
	}
	at := s.now().UTC()
	request, err := s.requests.Update(ctx, id, func(r *domain.AccessRequest) error {
		if err := checkTransition(r.Status, next); err != nil {
			return err
		}
		r.Status = next
		r.ReviewedAt = &at
		r.ReviewedBy = caller.User.ID
		return nil
	})
	if err != nil {
		return domain.AccessRequest{}, repoError(err, "Access request")
	}
	return request, nil
}
