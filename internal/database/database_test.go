package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"maskan/internal/domain"
	"maskan/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	logger := zerolog.Nop()
	db, err := NewDB(path, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *DB, role, balance string) *models.User {
	t.Helper()
	user := &models.User{
		FirstName: "Test",
		LastName:  role,
		Role:      role,
		Balance:   decimal.RequireFromString(balance),
	}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func seedApartment(t *testing.T, db *DB, ownerID int64, nightly, monthly string) *models.Apartment {
	t.Helper()
	apt := &models.Apartment{
		OwnerID:      ownerID,
		City:         "Tashkent",
		Address:      "Amir Temur 1",
		NightlyPrice: decimal.RequireFromString(nightly),
		MonthlyPrice: decimal.RequireFromString(monthly),
	}
	require.NoError(t, db.CreateApartment(context.Background(), apt))
	return apt
}

func seedBooking(t *testing.T, db *DB, tenantID, apartmentID int64, checkIn, checkOut string, status string) *models.Booking {
	t.Helper()
	in, err := time.Parse(dateLayout, checkIn)
	require.NoError(t, err)
	out, err := time.Parse(dateLayout, checkOut)
	require.NoError(t, err)

	booking := &models.Booking{
		TenantID:     tenantID,
		ApartmentID:  apartmentID,
		CheckInDate:  in,
		CheckOutDate: out,
		TotalRent:    decimal.RequireFromString("100.00"),
		Status:       status,
	}
	err = db.InTx(context.Background(), func(tx domain.Tx) error {
		return tx.InsertBooking(context.Background(), booking)
	})
	require.NoError(t, err)
	return booking
}

func TestNewDBMemory(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.GetUser(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInTxCommit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, models.RoleTenant, "100.00")

	err := db.InTx(ctx, func(tx domain.Tx) error {
		return tx.UpdateUserBalance(ctx, user.ID, decimal.RequireFromString("55.50"))
	})
	require.NoError(t, err)

	got, err := db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("55.50")), "balance %s", got.Balance)
}

func TestInTxRollback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, models.RoleTenant, "100.00")
	boom := errors.New("boom")

	err := db.InTx(ctx, func(tx domain.Tx) error {
		if err := tx.UpdateUserBalance(ctx, user.ID, decimal.Zero); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("100.00")), "rollback must keep balance, got %s", got.Balance)
}

func TestUpdateBalanceUnknownUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.InTx(ctx, func(tx domain.Tx) error {
		return tx.UpdateUserBalance(ctx, 9999, decimal.Zero)
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetApartment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, models.RoleOwner, "0")
	apt := seedApartment(t, db, owner.ID, "50.00", "1200.00")

	got, err := db.GetApartment(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.True(t, got.NightlyPrice.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, models.ApartmentActive, got.Status)

	_, err = db.GetApartment(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeedApartmentsUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, models.RoleOwner, "0")

	seed := []models.Apartment{
		{ID: 1, OwnerID: owner.ID, City: "Tashkent", Address: "A 1", NightlyPrice: decimal.RequireFromString("40.00"), MonthlyPrice: decimal.RequireFromString("900.00")},
	}
	require.NoError(t, db.SeedApartments(ctx, seed))

	// Повторный посев обновляет цены
	seed[0].NightlyPrice = decimal.RequireFromString("45.00")
	require.NoError(t, db.SeedApartments(ctx, seed))

	got, err := db.GetApartment(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.NightlyPrice.Equal(decimal.RequireFromString("45.00")), "price %s", got.NightlyPrice)
}

func TestTransactionsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, models.RoleTenant, "0")

	err := db.InTx(ctx, func(tx domain.Tx) error {
		return tx.InsertTransaction(ctx, &models.Transaction{
			UserID:           user.ID,
			Type:             models.TxDeposit,
			Amount:           decimal.RequireFromString("250.00"),
			RelatedBookingID: 7,
			RelatedUserID:    42,
			Description:      "top up",
		})
	})
	require.NoError(t, err)

	txns, err := db.ListUserTransactions(ctx, user.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, models.TxDeposit, txns[0].Type)
	assert.True(t, txns[0].Amount.Equal(decimal.RequireFromString("250.00")))
	assert.Equal(t, int64(7), txns[0].RelatedBookingID)
	assert.Equal(t, int64(42), txns[0].RelatedUserID)

	byBooking, err := db.ListBookingTransactions(ctx, 7)
	require.NoError(t, err)
	require.Len(t, byBooking, 1)
}

func TestRatings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tenant := seedUser(t, db, models.RoleTenant, "0")
	owner := seedUser(t, db, models.RoleOwner, "0")
	apt := seedApartment(t, db, owner.ID, "50.00", "1200.00")
	booking := seedBooking(t, db, tenant.ID, apt.ID, "2026-06-01", "2026-06-10", models.StatusCompleted)

	err := db.InTx(ctx, func(tx domain.Tx) error {
		rated, err := tx.HasRating(ctx, booking.ID)
		require.NoError(t, err)
		assert.False(t, rated)

		return tx.InsertRating(ctx, &models.Rating{
			BookingID:   booking.ID,
			TenantID:    tenant.ID,
			ApartmentID: apt.ID,
			Rating:      5,
			ReviewText:  "great stay",
		})
	})
	require.NoError(t, err)

	err = db.InTx(ctx, func(tx domain.Tx) error {
		rated, err := tx.HasRating(ctx, booking.ID)
		require.NoError(t, err)
		assert.True(t, rated)
		return nil
	})
	require.NoError(t, err)
}

func TestClosedDBErrors(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Close())

	_, err := db.GetUser(context.Background(), 1)
	assert.Error(t, err)

	err = db.InTx(context.Background(), func(tx domain.Tx) error { return nil })
	assert.Error(t, err)
}
