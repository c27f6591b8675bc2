// Package registration creates user accounts. It re-checks every input the
// client already checked, keeps one account per email and stores only
// salted password hashes.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/staffhub/internal/domain/user"
	"github.com/geocoder89/staffhub/internal/notifications"
	"github.com/geocoder89/staffhub/internal/observability"
	"github.com/geocoder89/staffhub/internal/validation"
)

const defaultAcquireTimeout = 3 * time.Second

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type Request struct {
	Email    string
	Password string
	Name     string
}

type Config struct {
	// AcquireTimeout bounds the wait for a free store connection.
	AcquireTimeout time.Duration
}

type Service struct {
	store          user.Store
	hasher         PasswordHasher
	notifier       notifications.Notifier
	log            *slog.Logger
	prom           *observability.Prom
	acquireTimeout time.Duration
}

// New wires a Service. notifier and prom may be nil.
func New(store user.Store, hasher PasswordHasher, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom, cfg Config) *Service {
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = defaultAcquireTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		store:          store,
		hasher:         hasher,
		notifier:       notifier,
		log:            log,
		prom:           prom,
		acquireTimeout: cfg.AcquireTimeout,
	}
}

// Register validates req, checks the email is free, hashes the password and
// inserts the user. Checks run in that order and the first failure is
// returned as *ValidationError, *ConflictError or *StorageError.
func (s *Service) Register(ctx context.Context, req Request) (pub user.Public, err error) {
	defer func() {
		s.prom.ObserveRegistration(resultLabel(err))
	}()

	email := strings.TrimSpace(req.Email)

	if email == "" || req.Password == "" {
		return user.Public{}, invalid(MsgRequired)
	}

	if !validation.ValidEmail(email) {
		return user.Public{}, invalid(MsgInvalidEmail)
	}

	if msg, ok := passwordMessage(req.Password); !ok {
		return user.Public{}, invalid(msg)
	}

	u, err := s.create(ctx, email, req.Password, optionalName(req.Name))
	if err != nil {
		return user.Public{}, err
	}

	s.welcome(ctx, u)

	return u.Public(), nil
}

// create runs the uniqueness check and the insert on one borrowed
// connection and gives it back on every return path.
func (s *Service) create(ctx context.Context, email, password string, name *string) (u user.User, err error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "registration acquire failed", "err", err)
		return user.User{}, storageFailure("acquire", err)
	}

	defer conn.Release()

	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "registration panicked", "panic", r)
			err = storageFailure("panic", fmt.Errorf("panic: %v", r))
		}
	}()

	exists, err := conn.EmailExists(ctx, email)
	if err != nil {
		s.log.ErrorContext(ctx, "registration email check failed", "err", err)
		return user.User{}, storageFailure("email_exists", err)
	}

	if exists {
		return user.User{}, conflict()
	}

	start := time.Now()
	hash, err := s.hasher.Hash(password)
	s.prom.ObserveHash(time.Since(start))

	if err != nil {
		s.log.ErrorContext(ctx, "registration hash failed", "err", err)
		return user.User{}, storageFailure("hash", err)
	}

	u, err = conn.Insert(ctx, user.NewFromRegistration(email, hash, name))
	if err != nil {
		// lost a race with a concurrent registration for the same email
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, conflict()
		}

		s.log.ErrorContext(ctx, "registration insert failed", "err", err)
		return user.User{}, storageFailure("insert", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID, "role", string(u.Role))

	return u, nil
}

// EmailExists reports whether email already has an account.
func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, invalid(MsgInvalidEmail)
	}

	conn, err := s.acquire(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "check email acquire failed", "err", err)
		return false, storageFailure("acquire", err)
	}

	defer conn.Release()

	exists, err := conn.EmailExists(ctx, email)
	if err != nil {
		s.log.ErrorContext(ctx, "check email failed", "err", err)
		return false, storageFailure("email_exists", err)
	}

	return exists, nil
}

func (s *Service) acquire(ctx context.Context) (user.Conn, error) {
	actx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()

	conn, err := s.store.Acquire(actx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreBusy, err)
		}
		return nil, err
	}

	return conn, nil
}

func (s *Service) welcome(ctx context.Context, u user.User) {
	if s.notifier == nil {
		return
	}

	name := ""
	if u.Name != nil {
		name = *u.Name
	}

	err := s.notifier.SendWelcome(ctx, notifications.WelcomeInput{UserID: u.ID, Email: u.Email, Name: name})
	if err != nil {
		s.log.WarnContext(ctx, "welcome notification failed", "user_id", u.ID, "err", err)
	}
}

func passwordMessage(p string) (string, bool) {
	switch validation.CheckPassword(p) {
	case validation.ViolationTooShort:
		return MsgPasswordShort, false
	case validation.ViolationNoDigit:
		return MsgPasswordNoDigit, false
	case validation.ViolationTooLong:
		return MsgPasswordLong, false
	default:
		return "", true
	}
}

func optionalName(name string) *string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return &name
}

func resultLabel(err error) string {
	var (
		verr *ValidationError
		cerr *ConflictError
	)

	switch {
	case err == nil:
		return "created"
	case errors.As(err, &verr):
		return "invalid"
	case errors.As(err, &cerr):
		return "conflict"
	default:
		return "storage_error"
	}
}
