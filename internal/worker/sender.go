package worker

import (
	"context"

	"maskan/internal/models"

	"github.com/rs/zerolog"
)

// LogSender writes notifications to the structured log. Stands in for a
// real push transport (email, messenger) in environments without one.
type LogSender struct {
	logger *zerolog.Logger
}

func NewLogSender(logger *zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, n *models.Notification) error {
	s.logger.Info().
		Int64("notification_id", n.ID).
		Int64("user_id", n.UserID).
		Int64("booking_id", n.BookingID).
		Str("type", n.Type).
		Str("body", n.Body).
		Msg("notification delivered")
	return nil
}
