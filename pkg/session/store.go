package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twilight/pkg/csrf"
	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/user"
)

// Store is the backend-agnostic session persistence contract.
type Store interface {
	// Get returns ErrNotFound for missing or expired sessions and
	// ErrStoreUnavailable when the backend cannot answer.
	Get(ctx context.Context, id string) (*Session, error)

	// Set inserts or replaces the session.
	Set(ctx context.Context, s *Session) error

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// CreateNew builds a guest session without persisting it.
	CreateNew() (*Session, error)

	// GetUser reads the user through to the user table. A missing user is
	// (nil, nil).
	GetUser(ctx context.Context, userID int64) (*user.User, error)
}

// Cleaner is implemented by backends that need an explicit sweep of expired
// records. Redis expires keys natively and does not implement it.
type Cleaner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// StoreOption configures the shared part of every backend.
type StoreOption func(*base)

// WithTTL sets the lifetime of sessions produced by CreateNew.
func WithTTL(ttl time.Duration) StoreOption {
	return func(b *base) {
		if ttl > 0 {
			b.ttl = ttl
		}
	}
}

// WithTimeout bounds every backend round trip.
func WithTimeout(d time.Duration) StoreOption {
	return func(b *base) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithClock replaces time.Now. Intended for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

func WithLogger(log *slog.Logger) StoreOption {
	return func(b *base) {
		if log != nil {
			b.log = log
		}
	}
}

// base carries what all backends share: id generation, TTL, the clock and
// the user read-through.
type base struct {
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	users   user.Repository
	log     *slog.Logger
}

func newBase(users user.Repository, backend string, opts []StoreOption) base {
	b := base{
		ttl:     time.Hour,
		timeout: 2 * time.Second,
		now:     time.Now,
		users:   users,
		log:     logger.Noop(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.log = b.log.With(logger.Component("session_store"), logger.Backend(backend))
	return b
}

func (b base) CreateNew() (*Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Join(ErrTokenGeneration, err)
	}
	token, err := csrf.Issue()
	if err != nil {
		return nil, errors.Join(ErrTokenGeneration, err)
	}

	now := b.now().UTC()
	return &Session{
		ID:        id.String(),
		CSRFToken: token,
		CreatedAt: now,
		ExpiresAt: now.Add(b.ttl),
	}, nil
}

func (b base) GetUser(ctx context.Context, userID int64) (*user.User, error) {
	if b.users == nil {
		return nil, ErrMissingDepends
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	u, err := b.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, unavailable(err)
	}
	return u, nil
}

func (b base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}
