package notifier

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes notifications to a zerolog logger. It is used when no
// webhook endpoint is configured.
type LogNotifier struct {
	Logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (l *LogNotifier) SendNotification(_ context.Context, subject, message string) error {
	l.Logger.Info().Str("subject", subject).Msg(message)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
