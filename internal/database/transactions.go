package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"maskan/internal/models"
)

func (t *Tx) InsertTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `INSERT INTO transactions (user_id, type, amount, related_booking_id, related_user_id, description, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	bookingID := sql.NullInt64{Int64: txn.RelatedBookingID, Valid: txn.RelatedBookingID != 0}
	relatedUser := sql.NullInt64{Int64: txn.RelatedUserID, Valid: txn.RelatedUserID != 0}
	result, err := t.tx.ExecContext(ctx, query,
		txn.UserID, txn.Type, txn.Amount, bookingID, relatedUser, txn.Description, now)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	txn.ID = id
	txn.CreatedAt = now
	return nil
}

func (db *DB) ListUserTransactions(ctx context.Context, userID int64, from, to time.Time) ([]*models.Transaction, error) {
	query := `SELECT id, user_id, type, amount, related_booking_id, related_user_id, description, created_at
              FROM transactions WHERE user_id = ?`
	args := []interface{}{userID}
	if !from.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		query += ` AND created_at <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var (
			txn         models.Transaction
			bookingID   sql.NullInt64
			relatedUser sql.NullInt64
			desc        sql.NullString
		)
		err := rows.Scan(&txn.ID, &txn.UserID, &txn.Type, &txn.Amount,
			&bookingID, &relatedUser, &desc, &txn.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.RelatedBookingID = bookingID.Int64
		txn.RelatedUserID = relatedUser.Int64
		txn.Description = desc.String
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txns, nil
}

// ListBookingTransactions returns the audit rows recorded for one booking.
func (db *DB) ListBookingTransactions(ctx context.Context, bookingID int64) ([]*models.Transaction, error) {
	query := `SELECT id, user_id, type, amount, related_booking_id, related_user_id, description, created_at
              FROM transactions WHERE related_booking_id = ? ORDER BY id ASC`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var (
			txn         models.Transaction
			relBooking  sql.NullInt64
			relatedUser sql.NullInt64
			desc        sql.NullString
		)
		err := rows.Scan(&txn.ID, &txn.UserID, &txn.Type, &txn.Amount,
			&relBooking, &relatedUser, &desc, &txn.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.RelatedBookingID = relBooking.Int64
		txn.RelatedUserID = relatedUser.Int64
		txn.Description = desc.String
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txns, nil
}
