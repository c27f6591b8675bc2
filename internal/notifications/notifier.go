package notifications

import "context"

type WelcomeInput struct {
	UserID int64
	Email  string
	Name   string
}

// Notifier tells a newly registered employee their account exists.
type Notifier interface {
	SendWelcome(ctx context.Context, input WelcomeInput) error
}
