package notifications

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) SendWelcome(ctx context.Context, in WelcomeInput) error {
	s.calls++
	return s.err
}

func TestProtectedNotifier_OpensAfterThreshold(t *testing.T) {
	inner := &stubNotifier{err: errors.New("provider down")}
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{FailureThreshold: 2, Cooldown: time.Minute})
	n.now = func() time.Time { return clock }

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := n.SendWelcome(ctx, WelcomeInput{Email: "a@b.com"}); err == nil {
			t.Fatalf("call %d: expected provider error", i)
		}
	}

	if err := n.SendWelcome(ctx, WelcomeInput{Email: "a@b.com"}); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	if inner.calls != 2 {
		t.Fatalf("inner called %d times, want 2", inner.calls)
	}

	// after the cooldown one trial call goes through and closes the circuit
	clock = clock.Add(2 * time.Minute)
	inner.err = nil

	if err := n.SendWelcome(ctx, WelcomeInput{Email: "a@b.com"}); err != nil {
		t.Fatalf("trial call: %v", err)
	}

	if n.state != stateClosed {
		t.Fatalf("state = %s, want closed", n.state)
	}
}
