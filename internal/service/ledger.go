package service

import (
	"context"
	"fmt"

	"maskan/internal/domain"
	"maskan/internal/metrics"
	"maskan/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerService moves money between user balances. Cross-account moves run
// inside a caller-provided unit of work so the caller can bundle them with
// booking writes; wallet operations open their own.
//
// Every balance change writes transaction rows. The payer row carries a
// negative amount, the payee row a positive one, and each references the
// other side through related_user_id.
type LedgerService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewLedgerService(store domain.Store, logger *zerolog.Logger) *LedgerService {
	return &LedgerService{store: store, logger: logger}
}

// Transfer debits fromUserID and credits toUserID by amount within tx.
// Returns ErrInsufficientFunds when the payer balance does not cover the
// amount; no partial writes survive in that case because the caller's unit
// of work rolls back.
func (l *LedgerService) Transfer(ctx context.Context, tx domain.Tx, fromUserID, toUserID int64, amount decimal.Decimal, bookingID int64, txType, descFrom, descTo string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: transfer amount must be positive", domain.ErrValidation)
	}
	amount = models.RoundMoney(amount)

	from, err := tx.GetUser(ctx, fromUserID)
	if err != nil {
		return fmt.Errorf("load payer %d: %w", fromUserID, err)
	}
	if from.Balance.LessThan(amount) {
		return fmt.Errorf("%w: user %d has %s, needs %s", domain.ErrInsufficientFunds, fromUserID, from.Balance, amount)
	}

	to, err := tx.GetUser(ctx, toUserID)
	if err != nil {
		return fmt.Errorf("load payee %d: %w", toUserID, err)
	}

	if err := tx.UpdateUserBalance(ctx, fromUserID, models.RoundMoney(from.Balance.Sub(amount))); err != nil {
		return fmt.Errorf("debit user %d: %w", fromUserID, err)
	}
	if err := tx.UpdateUserBalance(ctx, toUserID, models.RoundMoney(to.Balance.Add(amount))); err != nil {
		return fmt.Errorf("credit user %d: %w", toUserID, err)
	}

	debit := &models.Transaction{
		UserID:           fromUserID,
		Type:             txType,
		Amount:           amount.Neg(),
		RelatedBookingID: bookingID,
		RelatedUserID:    toUserID,
		Description:      descFrom,
	}
	credit := &models.Transaction{
		UserID:           toUserID,
		Type:             txType,
		Amount:           amount,
		RelatedBookingID: bookingID,
		RelatedUserID:    fromUserID,
		Description:      descTo,
	}
	if err := tx.InsertTransaction(ctx, debit); err != nil {
		return fmt.Errorf("record debit: %w", err)
	}
	if err := tx.InsertTransaction(ctx, credit); err != nil {
		return fmt.Errorf("record credit: %w", err)
	}

	metrics.IncLedgerTransaction(txType)

	l.logger.Info().
		Int64("from_user_id", fromUserID).
		Int64("to_user_id", toUserID).
		Int64("booking_id", bookingID).
		Str("type", txType).
		Str("amount", amount.String()).
		Msg("transfer completed")

	return nil
}

// SplitRefund returns 80% of totalAmount from the owner to the tenant and
// records the retained 20% as a cancellation_fee audit row on the owner.
// The fee row does not move money; the owner already holds that share.
// Refund and fee are rounded independently.
func (l *LedgerService) SplitRefund(ctx context.Context, tx domain.Tx, ownerID, tenantID int64, totalAmount decimal.Decimal, bookingID int64) (decimal.Decimal, decimal.Decimal, error) {
	if !totalAmount.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: refund base must be positive", domain.ErrValidation)
	}

	refund := models.RoundMoney(totalAmount.Mul(models.RefundRate))
	fee := models.RoundMoney(totalAmount.Mul(models.CancellationFeeRate))

	err := l.Transfer(ctx, tx, ownerID, tenantID, refund, bookingID, models.TxRefund,
		fmt.Sprintf("Refund for cancelled booking #%d", bookingID),
		fmt.Sprintf("Refund received for cancelled booking #%d", bookingID))
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	feeRow := &models.Transaction{
		UserID:           ownerID,
		Type:             models.TxCancellationFee,
		Amount:           fee,
		RelatedBookingID: bookingID,
		RelatedUserID:    tenantID,
		Description:      fmt.Sprintf("Cancellation fee retained for booking #%d", bookingID),
	}
	if err := tx.InsertTransaction(ctx, feeRow); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("record cancellation fee: %w", err)
	}

	metrics.IncLedgerTransaction(models.TxCancellationFee)

	return refund, fee, nil
}

// Deposit tops up a user's wallet from an external payment source.
func (l *LedgerService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: deposit amount must be positive", domain.ErrValidation)
	}
	amount = models.RoundMoney(amount)

	return l.store.InTx(ctx, func(tx domain.Tx) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.UpdateUserBalance(ctx, userID, models.RoundMoney(user.Balance.Add(amount))); err != nil {
			return err
		}
		row := &models.Transaction{
			UserID:      userID,
			Type:        models.TxDeposit,
			Amount:      amount,
			Description: "Wallet deposit",
		}
		if err := tx.InsertTransaction(ctx, row); err != nil {
			return err
		}
		metrics.IncLedgerTransaction(models.TxDeposit)
		return nil
	})
}

// Withdraw moves money out of a user's wallet. Fails with
// ErrInsufficientFunds when the balance does not cover the amount.
func (l *LedgerService) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: withdrawal amount must be positive", domain.ErrValidation)
	}
	amount = models.RoundMoney(amount)

	return l.store.InTx(ctx, func(tx domain.Tx) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if user.Balance.LessThan(amount) {
			return fmt.Errorf("%w: user %d has %s, needs %s", domain.ErrInsufficientFunds, userID, user.Balance, amount)
		}
		if err := tx.UpdateUserBalance(ctx, userID, models.RoundMoney(user.Balance.Sub(amount))); err != nil {
			return err
		}
		row := &models.Transaction{
			UserID:      userID,
			Type:        models.TxWithdrawal,
			Amount:      amount.Neg(),
			Description: "Wallet withdrawal",
		}
		if err := tx.InsertTransaction(ctx, row); err != nil {
			return err
		}
		metrics.IncLedgerTransaction(models.TxWithdrawal)
		return nil
	})
}
