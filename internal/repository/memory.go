package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is the in-process fallback for attempt limiting. Counters
// live in a sync.Map and reset when their window passes.
type MemoryLimiter struct {
	attempts sync.Map
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{}
}

type attemptEntry struct {
	mu        sync.Mutex
	count     int
	expiresAt time.Time
}

func (r *MemoryLimiter) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, _ := r.attempts.LoadOrStore(userID, &attemptEntry{})
	entry := val.(*attemptEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.count == 0 || now.After(entry.expiresAt) {
		entry.count = 1
		entry.expiresAt = now.Add(window)
	} else {
		entry.count++
	}

	return entry.count <= limit, nil
}
