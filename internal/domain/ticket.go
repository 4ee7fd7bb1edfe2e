package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// ParseTicketStatus validates a ticket status value.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	switch s := TicketStatus(raw); s {
	case TicketStatusOpen, TicketStatusClosed:
		return s, true
	}
	return "", false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// ParseTicketPriority validates a priority value.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	switch p := TicketPriority(raw); p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return p, true
	}
	return "", false
}

// Ticket is a support request raised by a user.
type Ticket struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Priority  TicketPriority `json:"priority"`
	Status    TicketStatus   `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UserID    string         `json:"userId"`
}

func (t Ticket) RecordID() string           { return t.ID }
func (t Ticket) OwnerID() string            { return t.UserID }
func (t Ticket) RecordStatus() string       { return string(t.Status) }
func (t Ticket) RecordCreatedAt() time.Time { return t.CreatedAt }
