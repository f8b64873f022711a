package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"maskan/internal/models"
)

func (t *Tx) InsertNotification(ctx context.Context, n *models.Notification) error {
	query := `INSERT INTO notifications (user_id, booking_id, type, body, status, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	status := n.Status
	if status == "" {
		status = "pending"
	}
	bookingID := sql.NullInt64{Int64: n.BookingID, Valid: n.BookingID != 0}
	result, err := t.tx.ExecContext(ctx, query, n.UserID, bookingID, n.Type, n.Body, status, now)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	n.ID = id
	n.Status = status
	n.CreatedAt = now
	return nil
}

func (db *DB) UpdateNotificationStatus(ctx context.Context, id int64, status string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE notifications SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}
	return nil
}

func (db *DB) CreateNotifyTask(ctx context.Context, task *models.NotifyTask) error {
	query := `INSERT INTO notify_queue (notification_id, payload, status, retry_count, last_error, created_at, next_retry_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		task.NotificationID,
		task.Payload,
		task.Status,
		task.RetryCount,
		task.LastError,
		now,
		task.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notify task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id
	task.CreatedAt = now
	return nil
}

func (db *DB) GetPendingNotifyTasks(ctx context.Context, limit int) ([]models.NotifyTask, error) {
	query := `SELECT id, notification_id, payload, status, retry_count, last_error, created_at, updated_at, next_retry_at
              FROM notify_queue
              WHERE status IN ('pending', 'retry') AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY created_at ASC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending notify tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.NotifyTask
	for rows.Next() {
		var (
			t       models.NotifyTask
			lastErr sql.NullString
		)
		err := rows.Scan(&t.ID, &t.NotificationID, &t.Payload, &t.Status,
			&t.RetryCount, &lastErr, &t.CreatedAt, &t.UpdatedAt, &t.NextRetryAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notify task: %w", err)
		}
		t.LastError = lastErr.String
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (db *DB) UpdateNotifyTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var query string
	var args []interface{}
	now := time.Now()

	switch status {
	case "retry":
		query = `UPDATE notify_queue SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1, updated_at = ? WHERE id = ?`
		args = []interface{}{status, errMsg, nextRetryAt, now, id}
	case "completed", "failed":
		query = `UPDATE notify_queue SET status = ?, last_error = ?, next_retry_at = ?, processed_at = ?, updated_at = ? WHERE id = ?`
		args = []interface{}{status, errMsg, nextRetryAt, &now, now, id}
	default:
		query = `UPDATE notify_queue SET status = ?, last_error = ?, next_retry_at = ?, updated_at = ? WHERE id = ?`
		args = []interface{}{status, errMsg, nextRetryAt, now, id}
	}

	_, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update notify task status: %w", err)
	}
	return nil
}
