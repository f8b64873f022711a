package models

import "time"

type Rating struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"booking_id"`
	TenantID    int64     `json:"tenant_id"`
	ApartmentID int64     `json:"apartment_id"`
	Rating      int       `json:"rating"`
	ReviewText  string    `json:"review_text,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
