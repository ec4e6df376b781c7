package models

import "time"

// Notification types emitted by the payment alert scan
const (
	NotificationPaymentReminder = "payment_reminder"
	NotificationPaymentOverdue  = "payment_overdue"
)

// Notification is an alert addressed to a staff user. While unread it
// deduplicates on (notification_type, related_entity_type, related_entity_id).
type Notification struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	NotificationType  string    `json:"notification_type"`
	RelatedEntityType string    `json:"related_entity_type"`
	RelatedEntityID   int64     `json:"related_entity_id"`
	IsRead            bool      `json:"is_read"`
	CreatedAt         time.Time `json:"created_at"`
}
