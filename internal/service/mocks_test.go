package service

import (
	"context"
	"io"
	"time"

	"maskan/internal/domain"
	"maskan/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockTx struct {
	mock.Mock
}

func (m *mockTx) GetApartment(ctx context.Context, id int64) (*models.Apartment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Apartment), args.Error(1)
}

func (m *mockTx) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockTx) CountConflicts(ctx context.Context, apartmentID int64, checkIn, checkOut time.Time, excludeBookingID int64) (int, error) {
	args := m.Called(ctx, apartmentID, checkIn, checkOut, excludeBookingID)
	return args.Int(0), args.Error(1)
}

func (m *mockTx) InsertBooking(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *mockTx) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockTx) ApplyModification(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *mockTx) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockTx) UpdateUserBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	return m.Called(ctx, id, balance).Error(0)
}

func (m *mockTx) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *mockTx) HasRating(ctx context.Context, bookingID int64) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *mockTx) InsertRating(ctx context.Context, rating *models.Rating) error {
	return m.Called(ctx, rating).Error(0)
}

func (m *mockTx) InsertNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

// mockStore runs every unit of work against a single embedded mockTx. A
// returned error stands in for the rollback; there is no real transaction.
type mockStore struct {
	mock.Mock
	tx *mockTx
}

func newMockStore() *mockStore {
	return &mockStore{tx: &mockTx{}}
}

func (m *mockStore) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	return fn(m.tx)
}

func (m *mockStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockStore) GetApartment(ctx context.Context, id int64) (*models.Apartment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Apartment), args.Error(1)
}

func (m *mockStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockStore) CheckConflict(ctx context.Context, apartmentID int64, checkIn, checkOut time.Time, excludeBookingID int64) (bool, error) {
	args := m.Called(ctx, apartmentID, checkIn, checkOut, excludeBookingID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) ListTenantBookings(ctx context.Context, tenantID int64, group string) ([]*models.Booking, error) {
	args := m.Called(ctx, tenantID, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockStore) ListOwnerBookings(ctx context.Context, ownerID int64, group string) ([]*models.Booking, error) {
	args := m.Called(ctx, ownerID, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockStore) ListUserTransactions(ctx context.Context, userID int64, from, to time.Time) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func fixedClock(t time.Time) domain.Clock {
	return func() time.Time { return t }
}
