// Package csrf implements the double-submit token check.
//
// A token is issued together with the session and delivered to the browser in
// a script-readable cookie. State-changing requests must echo it back in a
// header; the header value is compared against the token stored in the session.
package csrf

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// DefaultHeader is the request header carrying the submitted token.
const DefaultHeader = "X-CSRF-Token"

var (
	ErrInvalid         = errors.New("csrf.invalid")
	ErrTokenGeneration = errors.New("csrf.token_generation_failed")
)

// Issue returns a fresh, time-ordered, globally unique token.
func Issue() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return id.String(), nil
}

// Validate reports whether submitted matches expected. Both must be non-empty.
func Validate(expected, submitted string) bool {
	if expected == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}

// FromRequest reads the submitted token from header, or DefaultHeader when
// header is empty.
func FromRequest(r *http.Request, header string) string {
	if header == "" {
		header = DefaultHeader
	}
	return r.Header.Get(header)
}

// Validator checks a request against a token bound at construction.
type Validator func(r *http.Request) bool

// NewValidator binds expected to the request header named header.
func NewValidator(expected, header string) Validator {
	return func(r *http.Request) bool {
		return Validate(expected, FromRequest(r, header))
	}
}
