package validation_test

import (
	"strings"
	"testing"

	"github.com/geocoder89/staffhub/internal/validation"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want validation.Violation
	}{
		{name: "empty", in: "", want: validation.ViolationTooShort},
		{name: "short_with_digit", in: "short1", want: validation.ViolationTooShort},
		{name: "short_all_digits", in: "1234567", want: validation.ViolationTooShort},
		{name: "long_no_digit", in: "longenoughpw", want: validation.ViolationNoDigit},
		{name: "exactly_eight_with_digit", in: "abcd1234", want: validation.ViolationNone},
		{name: "multibyte_counts_runes", in: "ééééééé1", want: validation.ViolationNone},
		{name: "too_long", in: strings.Repeat("a", 72) + "1", want: validation.ViolationTooLong},
		{name: "max_bytes", in: strings.Repeat("a", 71) + "1", want: validation.ViolationNone},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := validation.CheckPassword(tt.in)
			if got != tt.want {
				t.Fatalf("CheckPassword(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestCheckPassword_LengthBeforeDigit(t *testing.T) {
	for n := 0; n < validation.MinPasswordLength; n++ {
		noDigit := strings.Repeat("x", n)
		withDigit := strings.Repeat("9", n)

		if got := validation.CheckPassword(noDigit); got != validation.ViolationTooShort {
			t.Fatalf("len %d without digit: got %s", n, got)
		}
		if got := validation.CheckPassword(withDigit); got != validation.ViolationTooShort {
			t.Fatalf("len %d with digit: got %s", n, got)
		}
	}
}

func TestValidEmail(t *testing.T) {
	good := []string{"a@b.com", "first.last@example.co.uk", "dup@x.com"}
	bad := []string{"", "plain", "a@", "@b.com", "a b@c.com"}

	for _, s := range good {
		if !validation.ValidEmail(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}

	for _, s := range bad {
		if validation.ValidEmail(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
