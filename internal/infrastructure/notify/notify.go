// Package notify delivers best-effort notifications to users.
package notify

import (
	"context"
	"errors"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/rs/zerolog"
)

type Notifier interface {
	Send(ctx context.Context, recipientID string, n domain.Notification) error
}

// Multi sends to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, recipientID string, n domain.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Send(ctx, recipientID, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier only writes the notification to the log. It is the fallback
// when no broker is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notify").Logger()}
}

func (l *LogNotifier) Send(_ context.Context, recipientID string, n domain.Notification) error {
	l.log.Info().
		Str("recipient_id", recipientID).
		Str("type", n.Type).
		Str("title", n.Title).
		Msg("notification")
	return nil
}
