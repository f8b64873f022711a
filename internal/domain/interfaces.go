package domain

import (
	"context"
	"time"

	"maskan/internal/models"

	"github.com/shopspring/decimal"
)

// Clock supplies the current time. Injected so the 24-hour cancellation
// boundary can be tested deterministically.
type Clock func() time.Time

// Tx is one atomic unit of work against the store. Every method observes
// the same snapshot; either the whole unit commits or none of it does.
type Tx interface {
	GetApartment(ctx context.Context, id int64) (*models.Apartment, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CountConflicts(ctx context.Context, apartmentID int64, checkIn, checkOut time.Time, excludeBookingID int64) (int, error)
	InsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	ApplyModification(ctx context.Context, booking *models.Booking) error

	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUserBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	InsertTransaction(ctx context.Context, tx *models.Transaction) error

	HasRating(ctx context.Context, bookingID int64) (bool, error)
	InsertRating(ctx context.Context, rating *models.Rating) error

	InsertNotification(ctx context.Context, n *models.Notification) error
}

// Store provides units of work plus plain reads that need no transaction.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetApartment(ctx context.Context, id int64) (*models.Apartment, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CheckConflict(ctx context.Context, apartmentID int64, checkIn, checkOut time.Time, excludeBookingID int64) (bool, error)
	ListTenantBookings(ctx context.Context, tenantID int64, group string) ([]*models.Booking, error)
	ListOwnerBookings(ctx context.Context, ownerID int64, group string) ([]*models.Booking, error)
	ListUserTransactions(ctx context.Context, userID int64, from, to time.Time) ([]*models.Transaction, error)
}

// Ledger moves money between user balances inside a caller-provided unit
// of work, writing the two-sided audit trail.
type Ledger interface {
	Transfer(ctx context.Context, tx Tx, fromUserID, toUserID int64, amount decimal.Decimal, bookingID int64, txType, descFrom, descTo string) error
	SplitRefund(ctx context.Context, tx Tx, ownerID, tenantID int64, totalAmount decimal.Decimal, bookingID int64) (refund, fee decimal.Decimal, err error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// AttemptLimiter throttles repeated booking attempts per user.
type AttemptLimiter interface {
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// NotifyQueue accepts committed notifications for asynchronous delivery.
// Enqueueing is best effort; a missed enqueue is picked up by the worker's
// store poll.
type NotifyQueue interface {
	EnqueueNotify(ctx context.Context, n *models.Notification) error
}

// NotificationSender delivers a notification to its transport. Push
// delivery is a collaborator concern; the worker retries through this.
type NotificationSender interface {
	Send(ctx context.Context, n *models.Notification) error
}
