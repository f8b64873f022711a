package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable audit record. Rows are only ever inserted;
// summing a user's rows from zero reconstructs their balance (the
// cancellation_fee type is the audit-only exception, see service.Ledger).
type Transaction struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	Type             string          `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	RelatedBookingID int64           `json:"related_booking_id,omitempty"`
	RelatedUserID    int64           `json:"related_user_id,omitempty"`
	Description      string          `json:"description,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}
