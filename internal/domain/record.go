package domain

import "time"

// Record is implemented by every persisted entity so storage drivers can index
// rows without knowing the concrete type.
type Record interface {
	RecordID() string
	OwnerID() string
	RecordStatus() string
	RecordCreatedAt() time.Time
}

// Owned is a record that belongs to a single user.
type Owned interface {
	OwnerID() string
}

// ReviewStatus is shared by orders, access requests and receipts.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ParseReviewStatus validates a status value. Values outside the set are rejected.
func ParseReviewStatus(raw string) (ReviewStatus, bool) {
	switch s := ReviewStatus(raw); s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return s, true
	}
	return "", false
}

// Terminal reports whether no further review transition is allowed.
func (s ReviewStatus) Terminal() bool {
	return s == ReviewApproved || s == ReviewRejected
}

// CanTransition reports whether a review may move from s to next.
func (s ReviewStatus) CanTransition(next ReviewStatus) bool {
	if s == next {
		return true
	}
	return !s.Terminal()
}

// Wallet is a supported payment rail.
type Wallet string

const (
	WalletVodafoneCash Wallet = "vodafone_cash"
	WalletOrangeCash   Wallet = "orange_cash"
	WalletEtisalatCash Wallet = "etisalat_cash"
	WalletInstapay     Wallet = "instapay"
	WalletFawry        Wallet = "fawry"
)

// ParseWallet validates a wallet identifier.
func ParseWallet(raw string) (Wallet, bool) {
	switch w := Wallet(raw); w {
	case WalletVodafoneCash, WalletOrangeCash, WalletEtisalatCash, WalletInstapay, WalletFawry:
		return w, true
	}
	return "", false
}

// ProofURLPrefix is the locator prefix for uploaded payment proofs.
const ProofURLPrefix = "/api/uploads/proof/"
