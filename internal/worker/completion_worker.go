package worker

import (
	"context"
	"time"

	"maskan/internal/database"
	"maskan/internal/service"

	"github.com/rs/zerolog"
)

// CompletionSweeper moves approved bookings to completed once their stay
// has ended. It runs alongside the notify worker and goes through the
// booking service so events and metrics fire the same way as for manual
// transitions.
type CompletionSweeper struct {
	db       *database.DB
	svc      *service.BookingService
	interval time.Duration
	logger   *zerolog.Logger
}

func NewCompletionSweeper(db *database.DB, svc *service.BookingService, interval time.Duration, logger *zerolog.Logger) *CompletionSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CompletionSweeper{db: db, svc: svc, interval: interval, logger: logger}
}

func (s *CompletionSweeper) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("completion sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("completion sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce completes every booking whose check-out has passed. A failure
// on one booking does not stop the rest of the batch.
func (s *CompletionSweeper) SweepOnce(ctx context.Context) int {
	ids, err := s.db.ListDueCompletions(ctx, time.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("list due completions")
		return 0
	}

	var completed int
	for _, id := range ids {
		if _, err := s.svc.CompleteBooking(ctx, id); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", id).Msg("complete booking")
			continue
		}
		completed++
	}
	if completed > 0 {
		s.logger.Info().Int("completed", completed).Msg("completion sweep finished")
	}
	return completed
}
