package domain

import "time"

// Receipt records a payment transfer submitted with proof.
type Receipt struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	Method     Wallet       `json:"method"`
	Receiver   string       `json:"receiver"`
	Sender     string       `json:"sender"`
	Amount     float64      `json:"amount"`
	PaymentRef string       `json:"paymentRef"`
	Note       string       `json:"note"`
	ProofURL   string       `json:"proofUrl"`
	Status     ReviewStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func (r Receipt) RecordID() string           { return r.ID }
func (r Receipt) OwnerID() string            { return r.UserID }
func (r Receipt) RecordStatus() string       { return string(r.Status) }
func (r Receipt) RecordCreatedAt() time.Time { return r.CreatedAt }
