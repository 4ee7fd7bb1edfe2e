package domain

import "time"

// ContactChannel is how a public visitor wants to be reached.
type ContactChannel string

const (
	ChannelWhatsApp ContactChannel = "whatsapp"
	ChannelPhone    ContactChannel = "phone"
	ChannelEmail    ContactChannel = "email"
)

// ParseContactChannel validates a channel value.
func ParseContactChannel(raw string) (ContactChannel, bool) {
	switch c := ContactChannel(raw); c {
	case ChannelWhatsApp, ChannelPhone, ChannelEmail:
		return c, true
	}
	return "", false
}

// SupportRequest is submitted by unauthenticated visitors.
type SupportRequest struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Channel   ContactChannel `json:"channel"`
	Message   string         `json:"message"`
	Source    string         `json:"source"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (s SupportRequest) RecordID() string           { return s.ID }
func (s SupportRequest) OwnerID() string            { return "" }
func (s SupportRequest) RecordStatus() string       { return s.Status }
func (s SupportRequest) RecordCreatedAt() time.Time { return s.CreatedAt }
