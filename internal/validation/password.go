// Package validation holds the input rules shared by the registration form
// and the registration service. Both sides call the same functions so a value
// accepted by one is accepted by the other.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes and newer x/crypto rejects it.
	MaxPasswordBytes = 72
)

type Violation int

const (
	ViolationNone Violation = iota
	ViolationTooShort
	ViolationNoDigit
	ViolationTooLong
)

func (v Violation) String() string {
	switch v {
	case ViolationNone:
		return "none"
	case ViolationTooShort:
		return "too_short"
	case ViolationNoDigit:
		return "no_digit"
	case ViolationTooLong:
		return "too_long"
	default:
		return "unknown"
	}
}

// CheckPassword reports the first rule the candidate breaks. Length is
// checked before digits; an empty candidate is too short.
func CheckPassword(candidate string) Violation {
	if utf8.RuneCountInString(candidate) < MinPasswordLength {
		return ViolationTooShort
	}

	if !strings.ContainsAny(candidate, "0123456789") {
		return ViolationNoDigit
	}

	if len(candidate) > MaxPasswordBytes {
		return ViolationTooLong
	}

	return ViolationNone
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidEmail checks email syntax only.
func ValidEmail(s string) bool {
	if s == "" {
		return false
	}
	return validate.Var(s, "email") == nil
}
