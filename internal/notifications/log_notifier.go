package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier writes the welcome message to the log instead of a mail
// provider.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendWelcome(ctx context.Context, in WelcomeInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.welcome", "user_id", in.UserID, "email", in.Email, "name", in.Name)
	return nil
}
