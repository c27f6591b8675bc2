// Package form is the client side of registration: a pure reducer over an
// immutable form state plus a small holder that fires the submit callback.
// Nothing here touches the network or storage.
package form

import (
	"maps"

	"github.com/geocoder89/staffhub/internal/validation"
)

const (
	MsgPasswordTooShort = "Password must be at least 8 characters."
	MsgPasswordNoDigit  = "Password must include at least one number."
	MsgPasswordTooLong  = "Password must be at most 72 bytes."
	MsgPasswordMismatch = "Passwords do not match."
	MsgInvalidEmail     = "Please enter a valid email address."
	MsgSuccess          = "Account created successfully!"
)

type Outcome uint8

const (
	Unchecked Outcome = iota
	Passed
	Failed
)

// Check is the validation result of one field. The zero value means the
// field has not been validated yet.
type Check struct {
	Outcome Outcome
	Message string
}

func pass() Check { return Check{Outcome: Passed} }

func fail(msg string) Check { return Check{Outcome: Failed, Message: msg} }

// Err returns the message when the check failed.
func (c Check) Err() (string, bool) {
	if c.Outcome != Failed {
		return "", false
	}
	return c.Message, true
}

// State is never mutated after construction; Reduce returns a copy.
type State struct {
	fields  []Field
	values  map[FieldName]string
	checks  map[FieldName]Check
	success string
}

func NewState(fields []Field) State {
	return State{
		fields: fields,
		values: make(map[FieldName]string, len(fields)),
		checks: make(map[FieldName]Check, len(fields)),
	}
}

func (s State) clone() State {
	return State{
		fields:  s.fields,
		values:  maps.Clone(s.values),
		checks:  maps.Clone(s.checks),
		success: s.success,
	}
}

func (s State) Fields() []Field { return s.fields }

func (s State) Value(name FieldName) string { return s.values[name] }

func (s State) Check(name FieldName) Check { return s.checks[name] }

// Values returns a copy of every entered value.
func (s State) Values() map[FieldName]string { return maps.Clone(s.values) }

// Errors returns only the failed checks, keyed by field.
func (s State) Errors() map[FieldName]string {
	out := make(map[FieldName]string)
	for name, c := range s.checks {
		if msg, ok := c.Err(); ok {
			out[name] = msg
		}
	}
	return out
}

func (s State) HasErrors() bool {
	for _, c := range s.checks {
		if c.Outcome == Failed {
			return true
		}
	}
	return false
}

// Success returns the success banner, if one is showing.
func (s State) Success() (string, bool) {
	return s.success, s.success != ""
}

func (s State) has(name FieldName) bool { return contains(s.fields, name) }

// ValidatePassword applies the password policy and returns the first
// failing rule's message.
func ValidatePassword(candidate string) (string, bool) {
	switch validation.CheckPassword(candidate) {
	case validation.ViolationTooShort:
		return MsgPasswordTooShort, false
	case validation.ViolationNoDigit:
		return MsgPasswordNoDigit, false
	case validation.ViolationTooLong:
		return MsgPasswordTooLong, false
	default:
		return "", true
	}
}

func passwordCheck(candidate string) Check {
	if msg, ok := ValidatePassword(candidate); !ok {
		return fail(msg)
	}
	return pass()
}

func matchCheck(password, confirm string) Check {
	if password != confirm {
		return fail(MsgPasswordMismatch)
	}
	return pass()
}
