package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/repository"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

// OrderService coordinates top-up orders.
type OrderService struct {
	orders    repository.OrderRepository
	publisher Publisher
	now       Clock
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo repository.OrderRepository
	Publisher Publisher
	Now       Clock
}

// OrderCreateInput describes an order submission.
type OrderCreateInput struct {
	Game       string
	PlayerID   string
	Amount     float64
	Wallet     string
	Sender     string
	PaymentRef string
	ProofURL   string
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{orders: deps.OrderRepo, publisher: deps.Publisher, now: deps.Now.orSystem()}
}

// List returns the orders caller may see, newest first.
func (s *OrderService) List(ctx context.Context, caller *auth.Principal) ([]domain.Order, error) {
	items, err := s.orders.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return auth.Visible(caller, items), nil
}

// Create validates and stores a pending order for caller.
func (s *OrderService) Create(ctx context.Context, caller *auth.Principal, in OrderCreateInput) (domain.Order, error) {
	if caller == nil {
		return domain.Order{}, apperrors.NewUnauthorized("")
	}
	game := sanitizeText(in.Game, 120)
	playerID := sanitizeText(in.PlayerID, 120)
	sender := sanitizeText(in.Sender, 120)
	paymentRef := sanitizeText(in.PaymentRef, 120)
	wallet, walletOK := domain.ParseWallet(strings.ToLower(strings.TrimSpace(in.Wallet)))
	if game == "" || playerID == "" || sender == "" || paymentRef == "" || strings.TrimSpace(in.ProofURL) == "" || !walletOK {
		return domain.Order{}, apperrors.NewValidationError("Missing required fields")
	}
	if !validAmount(in.Amount) {
		return domain.Order{}, apperrors.NewValidationError("Invalid amount")
	}
	proofURL, err := parseProofURL(in.ProofURL)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		ID:         newID(),
		Game:       game,
		PlayerID:   playerID,
		Amount:     in.Amount,
		Wallet:     wallet,
		Sender:     sender,
		PaymentRef: paymentRef,
		ProofURL:   proofURL,
		Status:     domain.ReviewPending,
		CreatedAt:  s.now().UTC(),
		UserID:     caller.User.ID,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return domain.Order{}, apperrors.NewStorageFailure(err)
	}

	_, err = s.publisher.Publish(ctx, NotificationInput{
		Type:    domain.NotificationOrderCreated,
		Title:   "New game top-up order",
		Message: fmt.Sprintf("%s submitted %s order for %s EGP", caller.User.Name, order.Game, formatAmount(order.Amount)),
		Details: map[string]any{
			"orderId":    order.ID,
			"game":       order.Game,
			"playerId":   order.PlayerID,
			"amount":     order.Amount,
			"wallet":     string(order.Wallet),
			"sender":     order.Sender,
			"paymentRef": order.PaymentRef,
			"createdBy":  caller.User.Name,
			"email":      caller.User.Email,
		},
	})
	if err != nil {
		return domain.Order{}, discardCreated(ctx, s.orders, order.ID, err)
	}
	return order, nil
}

// Review moves an order to status. Staff only; approved and rejected are final.
func (s *OrderService) Review(ctx context.Context, caller *auth.Principal, id, status string) (domain.Order, error) {
	if err := requireStaff(caller); err != nil {
		return domain.Order{}, err
	}
	next, err := parseReviewStatus(status)
	if err != nil {
		return domain.Order{}, err
	}
	at := s.now().UTC()
	order, err := s.orders.Update(ctx, id, func(o *domain.Order) error {
		if err := checkTransition(o.Status, next); err != nil {
			return err
		}
		o.Status = next
		o.ReviewedAt = &at
		return nil
	})
	if err != nil {
		return domain.Order{}, repoError(err, "Order")
	}
	return order, nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// formatAmount prints whole amounts without a fraction.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
