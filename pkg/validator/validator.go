// Package validator collects field rules and reports every failed rule at once.
//
//	err := validator.Apply(
//	    validator.Required("email", req.Email),
//	    validator.ValidEmail("email", req.Email),
//	    validator.MinLen("password", req.Password, 6),
//	)
package validator

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned by Apply when at least one rule fails.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field has at least one failure.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Rule is a deferred check with the error reported when it fails.
type Rule struct {
	Check func() bool
	Error FieldError
}

// Apply runs all rules and returns Errors, or nil when every rule passes.
func Apply(rules ...Rule) error {
	var errs Errors
	for _, r := range rules {
		if !r.Check() {
			errs = append(errs, r.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Extract returns the Errors wrapped in err, if any.
func Extract(err error) (Errors, bool) {
	var errs Errors
	ok := errors.As(err, &errs)
	return errs, ok
}

func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: FieldError{Field: field, Message: "is required"},
	}
}

func MinLen(field, value string, n int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) >= n },
		Error: FieldError{Field: field, Message: fmt.Sprintf("must be at least %d characters", n)},
	}
}

func MaxLen(field, value string, n int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= n },
		Error: FieldError{Field: field, Message: fmt.Sprintf("must be at most %d characters", n)},
	}
}

// ValidEmail accepts a bare address: no display name, exactly one @ and a
// dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}
			at := strings.LastIndexByte(value, '@')
			return at > 0 && strings.Contains(value[at+1:], ".")
		},
		Error: FieldError{Field: field, Message: "must be a valid email address"},
	}
}
