package worker

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"maskan/internal/database"
	"maskan/internal/domain"
	"maskan/internal/models"

	"github.com/rs/zerolog"
)

func TestProcessTaskSuccess(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	worker := NewNotifyWorker(db, sender, nil, RetryPolicy{}, nil)

	ctx := context.Background()
	n := seedNotification(t, db, 1)

	if err := worker.EnqueueNotify(ctx, n); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "completed" {
		t.Fatalf("expected status=completed, got %s", status)
	}
	if retryCount != 0 {
		t.Fatalf("expected retry_count=0, got %d", retryCount)
	}
	if nextRetry.Valid {
		t.Fatalf("expected next_retry_at NULL on success")
	}
	if sender.calls != 1 {
		t.Fatalf("expected 1 send call, got %d", sender.calls)
	}

	var notifStatus string
	row := db.QueryRowContext(ctx, `SELECT status FROM notifications WHERE id = ?`, n.ID)
	if err := row.Scan(&notifStatus); err != nil {
		t.Fatalf("scan notification: %v", err)
	}
	if notifStatus != "sent" {
		t.Fatalf("expected notification status=sent, got %s", notifStatus)
	}
}

func TestProcessTaskRetry(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{err: errors.New("boom")}
	worker := NewNotifyWorker(db, sender, nil, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, nil)

	ctx := context.Background()
	n := seedNotification(t, db, 1)

	if err := worker.EnqueueNotify(ctx, n); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "retry" {
		t.Fatalf("expected status=retry, got %s", status)
	}
	if retryCount != 1 {
		t.Fatalf("expected retry_count=1, got %d", retryCount)
	}
	if !nextRetry.Valid || nextRetry.Time.Before(time.Now()) {
		t.Fatalf("expected next_retry_at in future, got %v", nextRetry)
	}
}

func TestProcessTaskFail(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{err: errors.New("fatal")}
	worker := NewNotifyWorker(db, sender, nil, RetryPolicy{MaxRetries: 1}, nil)

	ctx := context.Background()
	n := seedNotification(t, db, 1)

	worker.EnqueueNotify(ctx, n)
	task, _ := worker.tryLocalQueue()
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != "failed" {
		t.Fatalf("expected status=failed, got %s", status)
	}
}

func TestProcessTaskBadPayload(t *testing.T) {
	db := newTestDB(t)
	worker := NewNotifyWorker(db, &fakeSender{}, nil, RetryPolicy{}, nil)

	ctx := context.Background()
	task := models.NotifyTask{NotificationID: 1, Payload: `not json`, Status: "pending"}
	if err := db.CreateNotifyTask(ctx, &task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != "failed" {
		t.Fatalf("expected status=failed for bad payload, got %s", status)
	}
}

func TestEnqueueNotifyRequiresID(t *testing.T) {
	db := newTestDB(t)
	worker := NewNotifyWorker(db, &fakeSender{}, nil, RetryPolicy{}, nil)

	if err := worker.EnqueueNotify(context.Background(), &models.Notification{}); err == nil {
		t.Fatalf("expected error for notification without id")
	}
	if err := worker.EnqueueNotify(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil notification")
	}
}

func TestPendingTasksVisibleToPoll(t *testing.T) {
	db := newTestDB(t)
	worker := NewNotifyWorker(db, &fakeSender{}, nil, RetryPolicy{}, nil)

	ctx := context.Background()
	n := seedNotification(t, db, 5)
	if err := worker.EnqueueNotify(ctx, n); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	tasks, err := db.GetPendingNotifyTasks(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(tasks))
	}
	if tasks[0].NotificationID != n.ID {
		t.Fatalf("expected notification id %d, got %d", n.ID, tasks[0].NotificationID)
	}
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}
	d1 := policy.NextDelay(1)
	d2 := policy.NextDelay(2)
	d3 := policy.NextDelay(5)

	if d1 != time.Second {
		t.Fatalf("attempt1 expected 1s, got %s", d1)
	}
	if d2 != 2*time.Second {
		t.Fatalf("attempt2 expected 2s, got %s", d2)
	}
	if d3 != 5*time.Second {
		t.Fatalf("attempt5 expected capped 5s, got %s", d3)
	}
}

// Helpers

type fakeSender struct {
	err   error
	calls int
}

func (f *fakeSender) Send(ctx context.Context, n *models.Notification) error {
	f.calls++
	return f.err
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.db")
	logger := zerolog.Nop()
	db, err := database.NewDB(path, &logger)
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedNotification(t *testing.T, db *database.DB, userID int64) *models.Notification {
	t.Helper()
	n := &models.Notification{UserID: userID, Type: "booking_created", Body: "test"}
	err := db.InTx(context.Background(), func(tx domain.Tx) error {
		return tx.InsertNotification(context.Background(), n)
	})
	if err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return n
}

func loadTaskStatus(t *testing.T, db *database.DB, id int64) (status string, retryCount int, nextRetry sql.NullTime) {
	t.Helper()
	row := db.QueryRowContext(context.Background(), `SELECT status, retry_count, next_retry_at FROM notify_queue WHERE id = ?`, id)
	if err := row.Scan(&status, &retryCount, &nextRetry); err != nil {
		t.Fatalf("scan task: %v", err)
	}
	return status, retryCount, nextRetry
}
