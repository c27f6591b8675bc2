package registration

import "errors"

const (
	MsgCreated         = "Account created successfully!"
	MsgRequired        = "Email and password are required"
	MsgInvalidEmail    = "Please enter a valid email address"
	MsgPasswordShort   = "Password must be at least 8 characters long"
	MsgPasswordNoDigit = "Password must include at least one number"
	MsgPasswordLong    = "Password must be at most 72 bytes long"
	MsgEmailTaken      = "An account with this email already exists"
	MsgStorage         = "Internal server error. Please try again later."
)

// ErrStoreBusy means no store connection became free within the wait bound.
var ErrStoreBusy = errors.New("store connection not available")

// ValidationError is a client mistake; Message is safe to show as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError means the email is already registered.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// StorageError hides the store failure behind a generic message. The cause
// is kept for logs only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return MsgStorage }

func (e *StorageError) Unwrap() error { return e.Err }

func invalid(msg string) error { return &ValidationError{Message: msg} }

func conflict() error { return &ConflictError{Message: MsgEmailTaken} }

func storageFailure(op string, err error) error { return &StorageError{Op: op, Err: err} }
