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

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets   repository.TicketRepository
	publisher Publisher
	now       Clock
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Publisher  Publisher
	Now        Clock
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title    string
	Priority string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{tickets: deps.TicketRepo, publisher: deps.Publisher, now: deps.Now.orSystem()}
}

// List returns the tickets caller may see, newest first.
func (s *TicketService) List(ctx context.Context, caller *auth.Principal) ([]domain.Ticket, error) {
	items, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return auth.Visible(caller, items), nil
}

// Create opens a ticket for caller. A missing or unknown priority becomes medium.
func (s *TicketService) Create(ctx context.Context, caller *auth.Principal, in TicketCreateInput) (domain.Ticket, error) {
	if caller == nil {
		return domain.Ticket{}, apperrors.NewUnauthorized("")
	}
	title := sanitizeText(in.Title, 200)
	if title == "" {
		return domain.Ticket{}, apperrors.NewValidationError("Title required")
	}
	priority, ok := domain.ParseTicketPriority(strings.ToLower(strings.TrimSpace(in.Priority)))
	if !ok {
		priority = domain.TicketPriorityMedium
	}

	ticket := domain.Ticket{
		ID:        newID(),
		Title:     title,
		Priority:  priority,
		Status:    domain.TicketStatusOpen,
		CreatedAt: s.now().UTC(),
		UserID:    caller.User.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return domain.Ticket{}, apperrors.NewStorageFailure(err)
	}

	_, err := s.publisher.Publish(ctx, NotificationInput{
		Type:    domain.NotificationTicketCreated,
		Title:   "New support ticket",
		Message: fmt.Sprintf("%s created a ticket: %s", caller.User.Name, ticket.Title),
		Details: map[string]any{
			"ticketId":  ticket.ID,
			"title":     ticket.Title,
			"priority":  string(ticket.Priority),
			"createdBy": caller.User.Name,
			"email":     caller.User.Email,
		},
	})
	if err != nil {
		return domain.Ticket{}, discardCreated(ctx, s.tickets, ticket.ID, err)
	}
	return ticket, nil
}

// SetStatus opens or closes a ticket. Staff only.
func (s *TicketService) SetStatus(ctx context.Context, caller *auth.Principal, id, status string) (domain.Ticket, error) {
	if err := requireStaff(caller); err != nil {
		return domain.Ticket{}, err
	}
	next, ok := domain.ParseTicketStatus(strings.ToLower(strings.TrimSpace(status)))
	if !ok {
		return domain.Ticket{}, apperrors.NewValidationError("Invalid status")
	}
	ticket, err := s.tickets.Update(ctx, id, func(t *domain.Ticket) error {
		t.Status = next
		return nil
	})
	if err != nil {
		return domain.Ticket{}, repoError(err, "Ticket")
	}
	return ticket, nil
}
