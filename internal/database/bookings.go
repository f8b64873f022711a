package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"maskan/internal/domain"
	"maskan/internal/models"
)

const dateLayout = "2006-01-02"

const bookingColumns = `id, tenant_id, apartment_id, check_in_date, check_out_date,
                 number_of_guests, payment_method, total_rent, status,
                 prev_check_in_date, prev_check_out_date, prev_total_rent, prev_status,
                 created_at, updated_at`

// conflictQuery counts blocking bookings overlapping a half-open
// [check_in, check_out) range. Touching endpoints are not a conflict.
const conflictQuery = `SELECT COUNT(*) FROM bookings
              WHERE apartment_id = ?
                AND status IN (?, ?, ?)
                AND check_in_date < ?
                AND check_out_date > ?
                AND id != ?`

func countConflicts(ctx context.Context, q querier, apartmentID int64, checkIn, checkOut time.Time, excludeBookingID int64) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, conflictQuery,
		apartmentID,
		models.StatusPending, models.StatusApproved, models.StatusModifiedApproved,
		checkOut.Format(dateLayout),
		checkIn.Format(dateLayout),
		excludeBookingID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count conflicts: %w", err)
	}
	return count, nil
}

func insertBooking(ctx context.Context, q querier, booking *models.Booking) error {
	query := `INSERT INTO bookings (
				tenant_id, apartment_id, check_in_date, check_out_date,
				number_of_guests, payment_method, total_rent, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	guests := sql.NullInt64{Int64: int64(booking.NumberOfGuests), Valid: booking.NumberOfGuests > 0}
	result, err := q.ExecContext(ctx, query,
		booking.TenantID,
		booking.ApartmentID,
		booking.CheckInDate.Format(dateLayout),
		booking.CheckOutDate.Format(dateLayout),
		guests,
		booking.PaymentMethod,
		booking.TotalRent,
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func scanBooking(row interface {
	Scan(dest ...interface{}) error
}) (*models.Booking, error) {
	var (
		b          models.Booking
		checkIn    string
		checkOut   string
		guests     sql.NullInt64
		prevIn     sql.NullString
		prevOut    sql.NullString
		prevRent   sql.NullString
		prevStatus sql.NullString
	)
	err := row.Scan(
		&b.ID, &b.TenantID, &b.ApartmentID, &checkIn, &checkOut,
		&guests, &b.PaymentMethod, &b.TotalRent, &b.Status,
		&prevIn, &prevOut, &prevRent, &prevStatus,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if b.CheckInDate, err = time.Parse(dateLayout, checkIn); err != nil {
		return nil, fmt.Errorf("failed to parse check-in date %s: %w", checkIn, err)
	}
	if b.CheckOutDate, err = time.Parse(dateLayout, checkOut); err != nil {
		return nil, fmt.Errorf("failed to parse check-out date %s: %w", checkOut, err)
	}
	if guests.Valid {
		b.NumberOfGuests = int(guests.Int64)
	}
	if prevIn.Valid {
		b.PrevCheckInDate, _ = time.Parse(dateLayout, prevIn.String)
	}
	if prevOut.Valid {
		b.PrevCheckOutDate, _ = time.Parse(dateLayout, prevOut.String)
	}
	if prevRent.Valid {
		if err := b.PrevTotalRent.Scan(prevRent.String); err != nil {
			return nil, fmt.Errorf("failed to parse prev total rent: %w", err)
		}
	}
	if prevStatus.Valid {
		b.PrevStatus = prevStatus.String
	}
	return &b, nil
}

func getBooking(ctx context.Context, q querier, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func updateBookingStatus(ctx context.Context, q querier, id int64, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	result, err := q.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// applyModification writes the modified dates/guests/rent together with
// the pre-modification snapshot in one statement.
func applyModification(ctx context.Context, q querier, b *models.Booking) error {
	query := `UPDATE bookings SET
				check_in_date = ?, check_out_date = ?, number_of_guests = ?,
				total_rent = ?, status = ?,
				prev_check_in_date = ?, prev_check_out_date = ?, prev_total_rent = ?, prev_status = ?,
				updated_at = ?
			WHERE id = ?`
	guests := sql.NullInt64{Int64: int64(b.NumberOfGuests), Valid: b.NumberOfGuests > 0}
	result, err := q.ExecContext(ctx, query,
		b.CheckInDate.Format(dateLayout),
		b.CheckOutDate.Format(dateLayout),
		guests,
		b.TotalRent,
		b.Status,
		b.PrevCheckInDate.Format(dateLayout),
		b.PrevCheckOutDate.Format(dateLayout),
		b.PrevTotalRent,
		b.PrevStatus,
		time.Now(),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply modification: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DB-level reads (no transaction).

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return getBooking(ctx, db.DB, id)
}

func (db *DB) CheckConflict(ctx context.Context, apartmentID int64, checkIn, checkOut time.Time, excludeBookingID int64) (bool, error) {
	count, err := countConflicts(ctx, db.DB, apartmentID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListDueCompletions returns ids of approved bookings whose stay has ended
// as of the given date. The completion sweep feeds them to CompleteBooking.
func (db *DB) ListDueCompletions(ctx context.Context, asOf time.Time) ([]int64, error) {
	query := `SELECT id FROM bookings
              WHERE status IN (?, ?) AND check_out_date <= ?
              ORDER BY id`
	rows, err := db.QueryContext(ctx, query,
		models.StatusApproved, models.StatusModifiedApproved, asOf.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query due completions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan due completion: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (db *DB) ListTenantBookings(ctx context.Context, tenantID int64, group string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = ?`
	args := []interface{}{tenantID}

	today := time.Now().Format(dateLayout)
	switch group {
	case "current":
		query += ` AND status IN (?, ?, ?, ?) AND check_out_date >= ?`
		args = append(args, models.StatusPending, models.StatusApproved,
			models.StatusModifiedPending, models.StatusModifiedApproved, today)
	case "past":
		query += ` AND (status = ? OR check_out_date < ?)`
		args = append(args, models.StatusCompleted, today)
	case "cancelled":
		query += ` AND status IN (?, ?, ?)`
		args = append(args, models.StatusCancelled, models.StatusRejected, models.StatusModifiedRejected)
	}
	query += ` ORDER BY created_at DESC`

	return db.queryBookings(ctx, query, args...)
}

func (db *DB) ListOwnerBookings(ctx context.Context, ownerID int64, group string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingPrefixedColumns + ` FROM bookings b
              JOIN apartments a ON a.id = b.apartment_id
              WHERE a.owner_id = ?`
	args := []interface{}{ownerID}

	switch group {
	case "pending":
		query += ` AND b.status IN (?, ?)`
		args = append(args, models.StatusPending, models.StatusModifiedPending)
	case "approved":
		query += ` AND b.status IN (?, ?)`
		args = append(args, models.StatusApproved, models.StatusModifiedApproved)
	case "history":
		query += ` AND b.status IN (?, ?, ?, ?)`
		args = append(args, models.StatusCompleted, models.StatusCancelled,
			models.StatusRejected, models.StatusModifiedRejected)
	}
	query += ` ORDER BY b.created_at DESC`

	return db.queryBookings(ctx, query, args...)
}

const bookingPrefixedColumns = `b.id, b.tenant_id, b.apartment_id, b.check_in_date, b.check_out_date,
                 b.number_of_guests, b.payment_method, b.total_rent, b.status,
                 b.prev_check_in_date, b.prev_check_out_date, b.prev_total_rent, b.prev_status,
                 b.created_at, b.updated_at`

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// Tx-level operations.

func (t *Tx) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return getBooking(ctx, t.tx, id)
}

func (t *Tx) CountConflicts(ctx context.Context, apartmentID int64, checkIn, checkOut time.Time, excludeBookingID int64) (int, error) {
	return countConflicts(ctx, t.tx, apartmentID, checkIn, checkOut, excludeBookingID)
}

func (t *Tx) InsertBooking(ctx context.Context, booking *models.Booking) error {
	return insertBooking(ctx, t.tx, booking)
}

func (t *Tx) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	return updateBookingStatus(ctx, t.tx, id, status)
}

func (t *Tx) ApplyModification(ctx context.Context, booking *models.Booking) error {
	return applyModification(ctx, t.tx, booking)
}
