package form

import (
	"strings"

	"github.com/geocoder89/staffhub/internal/validation"
)

type Event interface {
	isEvent()
}

// FieldChanged is emitted on every keystroke.
type FieldChanged struct {
	Name  FieldName
	Value string
}

// Submitted is emitted when the user submits the form.
type Submitted struct{}

func (FieldChanged) isEvent() {}
func (Submitted) isEvent()    {}

// Reduce returns the state that follows ev. s is left untouched.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case FieldChanged:
		return change(s, e.Name, e.Value)
	case Submitted:
		return submit(s)
	default:
		return s
	}
}

func change(s State, name FieldName, value string) State {
	next := s.clone()
	next.values[name] = value

	switch name {
	case FieldPassword:
		if next.has(FieldPassword) {
			next.checks[FieldPassword] = passwordCheck(value)
		}

		if next.has(FieldConfirmPassword) {
			// an empty confirm box is not complained about until submit
			if confirm := next.values[FieldConfirmPassword]; confirm != "" {
				next.checks[FieldConfirmPassword] = matchCheck(value, confirm)
			} else {
				delete(next.checks, FieldConfirmPassword)
			}
		}

	case FieldConfirmPassword:
		if next.has(FieldConfirmPassword) {
			next.checks[FieldConfirmPassword] = matchCheck(next.values[FieldPassword], value)
		}
	}

	if next.HasErrors() {
		next.success = ""
	}

	return next
}

func submit(s State) State {
	next := s.clone()
	hasPassword := next.has(FieldPassword)

	for f := range All(next.fields) {
		value := next.values[f.Name]

		switch f.Name {
		case FieldPassword:
			next.checks[f.Name] = passwordCheck(value)
		case FieldConfirmPassword:
			if hasPassword {
				next.checks[f.Name] = matchCheck(next.values[FieldPassword], value)
			}
		default:
			switch {
			case f.Required && value == "":
				next.checks[f.Name] = fail(f.Label + " is required.")
			// the value is submitted as typed; the server trims it
			case f.Type == InputEmail && value != "" && !validation.ValidEmail(strings.TrimSpace(value)):
				next.checks[f.Name] = fail(MsgInvalidEmail)
			default:
				next.checks[f.Name] = pass()
			}
		}
	}

	if next.HasErrors() {
		next.success = ""
		return next
	}

	next.success = MsgSuccess
	return next
}
