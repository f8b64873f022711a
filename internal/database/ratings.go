package database

import (
	"context"
	"fmt"
	"time"

	"maskan/internal/models"
)

func (t *Tx) HasRating(ctx context.Context, bookingID int64) (bool, error) {
	var count int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ratings WHERE booking_id = ?`, bookingID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check rating: %w", err)
	}
	return count > 0, nil
}

func (t *Tx) InsertRating(ctx context.Context, rating *models.Rating) error {
	query := `INSERT INTO ratings (booking_id, tenant_id, apartment_id, rating, review_text, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := t.tx.ExecContext(ctx, query,
		rating.BookingID, rating.TenantID, rating.ApartmentID,
		rating.Rating, rating.ReviewText, now)
	if err != nil {
		return fmt.Errorf("failed to insert rating: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rating.ID = id
	rating.CreatedAt = now
	return nil
}
