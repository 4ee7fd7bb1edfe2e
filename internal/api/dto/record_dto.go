package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Amount accepts a JSON number or a numeric string. Anything else decodes to NaN
// so validation rejects it with a field error instead of a decode error.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			*a = Amount(math.NaN())
			return nil
		}
		raw = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		*a = Amount(math.NaN())
		return nil
	}
	*a = Amount(v)
	return nil
}

// CreateOrderRequest payload.
type CreateOrderRequest struct {
	Game       string `json:"game"`
	PlayerID   string `json:"playerId"`
	Amount     Amount `json:"amount"`
	Wallet     string `json:"wallet"`
	Sender     string `json:"sender"`
	PaymentRef string `json:"paymentRef"`
	ProofURL   string `json:"proofUrl"`
}

// CreateAccessRequest payload.
type CreateAccessRequest struct {
	Resource string `json:"resource"`
	UseCase  string `json:"useCase"`
	Duration string `json:"duration"`
}

// CreateReceiptRequest payload.
type CreateReceiptRequest struct {
	Method     string `json:"method"`
	Receiver   string `json:"receiver"`
	Sender     string `json:"sender"`
	Amount     Amount `json:"amount"`
	PaymentRef string `json:"paymentRef"`
	Note       string `json:"note"`
	ProofURL   string `json:"proofUrl"`
}

// ProofUploadResponse is returned after a proof upload.
type ProofUploadResponse struct {
	FileURL string `json:"fileUrl"`
}
