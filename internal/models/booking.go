package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID             int64           `json:"id"`
	TenantID       int64           `json:"tenant_id"`
	ApartmentID    int64           `json:"apartment_id"`
	CheckInDate    time.Time       `json:"check_in_date"`
	CheckOutDate   time.Time       `json:"check_out_date"`
	NumberOfGuests int             `json:"number_of_guests,omitempty"`
	PaymentMethod  string          `json:"payment_method"`
	TotalRent      decimal.Decimal `json:"total_rent"`
	Status         string          `json:"status"`

	// Snapshot of the booking as it was before the last modification
	// request. Written when a modification is submitted; zero values mean
	// no modification has been requested yet.
	PrevCheckInDate  time.Time       `json:"prev_check_in_date,omitempty"`
	PrevCheckOutDate time.Time       `json:"prev_check_out_date,omitempty"`
	PrevTotalRent    decimal.Decimal `json:"prev_total_rent,omitempty"`
	PrevStatus       string          `json:"prev_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Nights returns the whole number of nights between check-in and check-out.
func (b *Booking) Nights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}

func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

func (b *Booking) IsApproved() bool {
	return b.Status == StatusApproved || b.Status == StatusModifiedApproved
}

func (b *Booking) IsTerminal() bool {
	return IsTerminalStatus(b.Status)
}

type Availability struct {
	ApartmentID  int64     `json:"apartment_id"`
	CheckInDate  time.Time `json:"check_in_date"`
	CheckOutDate time.Time `json:"check_out_date"`
	Available    bool      `json:"available"`
}
