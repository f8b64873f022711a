package models

import "time"

// Notification is a pending message for a user about a booking event.
// Delivery transport is a collaborator concern; the core only records and
// queues them.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BookingID int64     `json:"booking_id,omitempty"`
	Type      string    `json:"type"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NotifyTask is a persisted unit of work for the notification worker.
type NotifyTask struct {
	ID             int64      `json:"id"`
	NotificationID int64      `json:"notification_id"`
	Payload        string     `json:"payload"`
	Status         string     `json:"status"`
	RetryCount     int        `json:"retry_count"`
	LastError      string     `json:"last_error,omitempty"`
	NextRetryAt    *time.Time `json:"next_retry_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
