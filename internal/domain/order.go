package domain

import "time"

// Order is a game top-up paid through a wallet transfer.
type Order struct {
	ID         string       `json:"id"`
	Game       string       `json:"game"`
	PlayerID   string       `json:"playerId"`
	Amount     float64      `json:"amount"`
	Wallet     Wallet       `json:"wallet"`
	Sender     string       `json:"sender"`
	PaymentRef string       `json:"paymentRef"`
	ProofURL   string       `json:"proofUrl"`
	Status     ReviewStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	ReviewedAt *time.Time   `json:"reviewedAt,omitempty"`
	UserID     string       `json:"userId"`
}

func (o Order) RecordID() string           { return o.ID }
func (o Order) OwnerID() string            { return o.UserID }
func (o Order) RecordStatus() string       { return string(o.Status) }
func (o Order) RecordCreatedAt() time.Time { return o.CreatedAt }
