package domain

import "time"

// NotificationType tags the event that produced a notification.
type NotificationType string

const (
	NotificationTicketCreated        NotificationType = "ticket_created"
	NotificationOrderCreated         NotificationType = "order_created"
	NotificationAccessRequestCreated NotificationType = "access_request_created"
	NotificationReceiptCreated       NotificationType = "payment_receipt_created"
	NotificationSupportRequest       NotificationType = "public_support_request"
	NotificationAISyncReport         NotificationType = "ai_sync_report"
	NotificationIntegrationTest      NotificationType = "integration_test"
)

// ScopeAdmin is the only notification scope.
const ScopeAdmin = "admin"

// Notification is an entry in the staff inbox.
type Notification struct {
	ID        string           `json:"id"`
	Scope     string           `json:"scope"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Details   map[string]any   `json:"details,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
}

func (n Notification) RecordID() string { return n.ID }
func (n Notification) OwnerID() string  { return "" }
func (n Notification) RecordStatus() string {
	if n.Read {
		return "read"
	}
	return "unread"
}
func (n Notification) RecordCreatedAt() time.Time { return n.CreatedAt }
