// Package user stores user accounts: the email, bcrypt password hash and
// per-user API key used by the identity layer.
package user

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/twilight/pkg/sanitizer"
)

var (
	ErrNotFound   = errors.New("user.not_found")
	ErrEmailTaken = errors.New("user.email_taken")
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	APIKey       *string   `json:"api_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository is the persistence contract for users.
// Lookups return ErrNotFound when no row matches. Any other error means the
// backing store could not answer.
type Repository interface {
	Create(ctx context.Context, email, passwordHash string, apiKey *string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByAPIKey(ctx context.Context, key string) (*User, error)
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return sanitizer.NormalizeEmail(email)
}
