package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"maskan/internal/config"
	"maskan/internal/database"
	"maskan/internal/domain"
	"maskan/internal/models"
	"maskan/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Полный цикл поверх настоящей sqlite: сервисы, леджер и хранилище вместе.

type fixture struct {
	db     *database.DB
	svc    *service.BookingService
	ledger *service.LedgerService
	tenant *models.User
	owner  *models.User
	apt    *models.Apartment
	now    time.Time
}

func newFixture(t *testing.T, tenantBalance string) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "maskan.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	tenant := &models.User{FirstName: "Aziz", Role: models.RoleTenant, Balance: decimal.RequireFromString(tenantBalance)}
	require.NoError(t, db.CreateUser(ctx, tenant))
	owner := &models.User{FirstName: "Umida", Role: models.RoleOwner, Balance: decimal.Zero}
	require.NoError(t, db.CreateUser(ctx, owner))

	apt := &models.Apartment{
		OwnerID:      owner.ID,
		City:         "Tashkent",
		Address:      "Navoi 12",
		NightlyPrice: decimal.RequireFromString("50.00"),
		MonthlyPrice: decimal.RequireFromString("1200.00"),
	}
	require.NoError(t, db.CreateApartment(ctx, apt))

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	ledger := service.NewLedgerService(db, &logger)
	svc := service.NewBookingService(db, ledger, nil, nil, nil,
		func() time.Time { return now }, config.BookingConfig{}, &logger)

	return &fixture{db: db, svc: svc, ledger: ledger, tenant: tenant, owner: owner, apt: apt, now: now}
}

func (f *fixture) balance(t *testing.T, userID int64) decimal.Decimal {
	t.Helper()
	user, err := f.db.GetUser(context.Background(), userID)
	require.NoError(t, err)
	return user.Balance
}

func TestBookingFlowCreateApproveComplete(t *testing.T) {
	f := newFixture(t, "150.00")
	ctx := context.Background()

	checkIn := f.now.AddDate(0, 1, 0)
	checkOut := checkIn.AddDate(0, 0, 3)

	booking, err := f.svc.CreateBooking(ctx, f.tenant.ID, f.apt.ID, checkIn, checkOut, 2, models.PaymentBalance)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, booking.Status)
	assert.True(t, booking.TotalRent.Equal(decimal.RequireFromString("150.00")))

	// Точный баланс уходит в ноль, аренда на счету владельца
	assert.True(t, f.balance(t, f.tenant.ID).Equal(decimal.Zero), "tenant balance %s", f.balance(t, f.tenant.ID))
	assert.True(t, f.balance(t, f.owner.ID).Equal(decimal.RequireFromString("150.00")))

	// Журнал: дебет и кредит ссылаются друг на друга
	txns, err := f.db.ListBookingTransactions(ctx, booking.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	var debit, credit *models.Transaction
	for _, txn := range txns {
		if txn.Amount.IsNegative() {
			debit = txn
		} else {
			credit = txn
		}
	}
	require.NotNil(t, debit)
	require.NotNil(t, credit)
	assert.Equal(t, f.tenant.ID, debit.UserID)
	assert.Equal(t, f.owner.ID, debit.RelatedUserID)
	assert.Equal(t, f.tenant.ID, credit.RelatedUserID)
	assert.True(t, debit.Amount.Neg().Equal(credit.Amount))

	_, err = f.svc.ApproveBooking(ctx, booking.ID, f.owner.ID)
	require.NoError(t, err)

	// До выезда завершать нельзя
	_, err = f.svc.CompleteBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, domain.ErrGuardViolation)
}

func TestBookingFlowReject(t *testing.T) {
	f := newFixture(t, "200.00")
	ctx := context.Background()

	checkIn := f.now.AddDate(0, 1, 0)
	booking, err := f.svc.CreateBooking(ctx, f.tenant.ID, f.apt.ID, checkIn, checkIn.AddDate(0, 0, 4), 1, models.PaymentBalance)
	require.NoError(t, err)

	_, refund, err := f.svc.RejectBooking(ctx, booking.ID, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, refund.Equal(decimal.RequireFromString("200.00")))

	// Отказ возвращает всю аренду
	assert.True(t, f.balance(t, f.tenant.ID).Equal(decimal.RequireFromString("200.00")))
	assert.True(t, f.balance(t, f.owner.ID).Equal(decimal.Zero))

	got, err := f.db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)

	// Даты снова свободны
	conflict, err := f.svc.CheckConflict(ctx, f.apt.ID, checkIn, checkIn.AddDate(0, 0, 4), 0)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestBookingFlowCancelSplitsRefund(t *testing.T) {
	f := newFixture(t, "100.00")
	ctx := context.Background()

	checkIn := f.now.AddDate(0, 1, 0)
	booking, err := f.svc.CreateBooking(ctx, f.tenant.ID, f.apt.ID, checkIn, checkIn.AddDate(0, 0, 2), 1, models.PaymentBalance)
	require.NoError(t, err)

	_, refund, fee, err := f.svc.CancelBooking(ctx, booking.ID, f.tenant.ID)
	require.NoError(t, err)
	assert.True(t, refund.Equal(decimal.RequireFromString("80.00")), "refund %s", refund)
	assert.True(t, fee.Equal(decimal.RequireFromString("20.00")), "fee %s", fee)

	assert.True(t, f.balance(t, f.tenant.ID).Equal(decimal.RequireFromString("80.00")))
	assert.True(t, f.balance(t, f.owner.ID).Equal(decimal.RequireFromString("20.00")))

	// Строка комиссии аудитная: балансы не трогает, но остаётся в журнале
	txns, err := f.db.ListBookingTransactions(ctx, booking.ID)
	require.NoError(t, err)
	var feeRows int
	for _, txn := range txns {
		if txn.Type == models.TxCancellationFee {
			feeRows++
			assert.Equal(t, f.owner.ID, txn.UserID)
			assert.True(t, txn.Amount.Equal(decimal.RequireFromString("20.00")))
		}
	}
	assert.Equal(t, 1, feeRows)
}

func TestBookingFlowModification(t *testing.T) {
	f := newFixture(t, "300.00")
	ctx := context.Background()

	checkIn := f.now.AddDate(0, 1, 0)
	booking, err := f.svc.CreateBooking(ctx, f.tenant.ID, f.apt.ID, checkIn, checkIn.AddDate(0, 0, 3), 1, models.PaymentBalance)
	require.NoError(t, err)
	_, err = f.svc.ApproveBooking(ctx, booking.ID, f.owner.ID)
	require.NoError(t, err)

	// Продление на две ночи: доплата списывается сразу
	modified, err := f.svc.RequestModification(ctx, booking.ID, f.tenant.ID, time.Time{}, checkIn.AddDate(0, 0, 5), 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusModifiedPending, modified.Status)
	assert.True(t, modified.TotalRent.Equal(decimal.RequireFromString("250.00")))
	assert.True(t, f.balance(t, f.tenant.ID).Equal(decimal.RequireFromString("50.00")))
	assert.True(t, f.balance(t, f.owner.ID).Equal(decimal.RequireFromString("250.00")))

	approved, err := f.svc.ApproveModification(ctx, booking.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusModifiedApproved, approved.Status)

	// Чужие даты внутри нового интервала заняты
	conflict, err := f.svc.CheckConflict(ctx, f.apt.ID, checkIn.AddDate(0, 0, 4), checkIn.AddDate(0, 0, 5), 0)
	require.NoError(t, err)
	assert.True(t, conflict)
}

func TestBookingFlowRejectModificationKeepsRent(t *testing.T) {
	f := newFixture(t, "300.00")
	ctx := context.Background()

	checkIn := f.now.AddDate(0, 1, 0)
	booking, err := f.svc.CreateBooking(ctx, f.tenant.ID, f.apt.ID, checkIn, checkIn.AddDate(0, 0, 3), 1, models.PaymentBalance)
	require.NoError(t, err)
	_, err = f.svc.ApproveBooking(ctx, booking.ID, f.owner.ID)
	require.NoError(t, err)
	_, err = f.svc.RequestModification(ctx, booking.ID, f.tenant.ID, time.Time{}, checkIn.AddDate(0, 0, 5), 0)
	require.NoError(t, err)

	rejected, err := f.svc.RejectModification(ctx, booking.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, rejected.Status)

	// Статус откатился, а даты и доплата остались новыми
	got, err := f.db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, checkIn.AddDate(0, 0, 5).Format("2006-01-02"), got.CheckOutDate.Format("2006-01-02"))
	assert.True(t, got.TotalRent.Equal(decimal.RequireFromString("250.00")))
	assert.True(t, f.balance(t, f.tenant.ID).Equal(decimal.RequireFromString("50.00")))
}

func TestBookingFlowRating(t *testing.T) {
	f := newFixture(t, "150.00")
	ctx := context.Background()

	// Прошедшее проживание: бронь создаём напрямую, минуя валидацию дат
	checkIn := f.now.AddDate(0, -1, 0)
	booking := &models.Booking{
		TenantID:     f.tenant.ID,
		ApartmentID:  f.apt.ID,
		CheckInDate:  checkIn,
		CheckOutDate: checkIn.AddDate(0, 0, 3),
		TotalRent:    decimal.RequireFromString("150.00"),
		Status:       models.StatusApproved,
	}
	err := f.db.InTx(ctx, func(tx domain.Tx) error {
		return tx.InsertBooking(ctx, booking)
	})
	require.NoError(t, err)

	completed, err := f.svc.CompleteBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	ok, err := f.svc.CanRate(ctx, booking.ID, f.tenant.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	rating, err := f.svc.SubmitRating(ctx, booking.ID, f.tenant.ID, 5, "spotless")
	require.NoError(t, err)
	assert.NotZero(t, rating.ID)

	_, err = f.svc.SubmitRating(ctx, booking.ID, f.tenant.ID, 4, "again")
	assert.ErrorIs(t, err, domain.ErrGuardViolation)

	ok, err = f.svc.CanRate(ctx, booking.ID, f.tenant.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWalletDepositWithdraw(t *testing.T) {
	f := newFixture(t, "0")
	ctx := context.Background()

	require.NoError(t, f.ledger.Deposit(ctx, f.tenant.ID, decimal.RequireFromString("120.50")))
	assert.True(t, f.balance(t, f.tenant.ID).Equal(decimal.RequireFromString("120.50")))

	require.NoError(t, f.ledger.Withdraw(ctx, f.tenant.ID, decimal.RequireFromString("20.50")))
	assert.True(t, f.balance(t, f.tenant.ID).Equal(decimal.RequireFromString("100.00")))

	err := f.ledger.Withdraw(ctx, f.tenant.ID, decimal.RequireFromString("500.00"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	txns, err := f.db.ListUserTransactions(ctx, f.tenant.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	// Сумма строк журнала восстанавливает баланс
	sum := decimal.Zero
	for _, txn := range txns {
		sum = sum.Add(txn.Amount)
	}
	assert.True(t, sum.Equal(f.balance(t, f.tenant.ID)), "ledger sum %s", sum)
}
