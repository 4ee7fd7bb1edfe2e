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

// ReceiptService stores payment receipts. Receipt status is read-only.
type ReceiptService struct {
	receipts  repository.ReceiptRepository
	publisher Publisher
	now       Clock
}

// ReceiptDependencies bundles collaborators for the receipt service.
type ReceiptDependencies struct {
	ReceiptRepo repository.ReceiptRepository
	Publisher   Publisher
	Now         Clock
}

// ReceiptCreateInput describes a receipt submission.
type ReceiptCreateInput struct {
	Method     string
	Receiver   string
	Sender     string
	Amount     float64
	PaymentRef string
	Note       string
	ProofURL   string
}

// NewReceiptService constructs the service.
func NewReceiptService(deps ReceiptDependencies) *ReceiptService {
	return &ReceiptService{receipts: deps.ReceiptRepo, publisher: deps.Publisher, now: deps.Now.orSystem()}
}

// List returns the receipts caller may see, newest first.
func (s *ReceiptService) List(ctx context.Context, caller *auth.Principal) ([]domain.Receipt, error) {
	items, err := s.receipts.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return auth.Visible(caller, items), nil
}

// Create validates and stores a pending receipt. The method defaults to instapay.
func (s *ReceiptService) Create(ctx context.Context, caller *auth.Principal, in ReceiptCreateInput) (domain.Receipt, error) {
	if caller == nil {
		return domain.Receipt{}, apperrors.NewUnauthorized("")
	}
	method := strings.ToLower(strings.TrimSpace(in.Method))
	if method == "" {
		method = string(domain.WalletInstapay)
	}
	receiver := sanitizeText(in.Receiver, 120)
	sender := sanitizeText(in.Sender, 120)
	paymentRef := sanitizeText(in.PaymentRef, 120)
	if receiver == "" || sender == "" || paymentRef == "" || strings.TrimSpace(in.ProofURL) == "" {
		return domain.Receipt{}, apperrors.NewValidationError("Missing required fields")
	}
	wallet, ok := domain.ParseWallet(method)
	if !ok {
		return domain.Receipt{}, apperrors.NewValidationError("Invalid payment method")
	}
	if !validAmount(in.Amount) {
		return domain.Receipt{}, apperrors.NewValidationError("Invalid amount")
	}
	proofURL, err := parseProofURL(in.ProofURL)
	if err != nil {
		return domain.Receipt{}, err
	}

	receipt := domain.Receipt{
		ID:         newID(),
		UserID:     caller.User.ID,
		Method:     wallet,
		Receiver:   receiver,
		Sender:     sender,
		Amount:     in.Amount,
		PaymentRef: paymentRef,
		Note:       sanitizeText(in.Note, 500),
		ProofURL:   proofURL,
		Status:     domain.ReviewPending,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.receipts.Create(ctx, receipt); err != nil {
		return domain.Receipt{}, apperrors.NewStorageFailure(err)
	}

	_, err = s.publisher.Publish(ctx, NotificationInput{
		Type:    domain.NotificationReceiptCreated,
		Title:   "New payment receipt",
		Message: fmt.Sprintf("%s submitted a payment receipt (%s EGP)", caller.User.Name, formatAmount(receipt.Amount)),
		Details: map[string]any{
			"receiptId":  receipt.ID,
			"amount":     receipt.Amount,
			"sender":     receipt.Sender,
			"paymentRef": receipt.PaymentRef,
			"createdBy":  caller.User.Name,
			"email":      caller.User.Email,
		},
	})
	if err != nil {
		return domain.Receipt{}, discardCreated(ctx, s.receipts, receipt.ID, err)
	}
	return receipt, nil
}
