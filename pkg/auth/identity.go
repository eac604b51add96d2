package auth

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/session"
	"github.com/dmitrymomot/twilight/pkg/user"
)

// Identity is the outcome of resolving a request.
type Identity struct {
	// User is nil for guests.
	User *user.User
	// Session is nil only when resolution happened outside the middleware and
	// the request carried no valid session.
	Session *session.Session
	// ViaAPIKey reports that User came from an API key rather than the session.
	ViaAPIKey bool
	// CSRFValid reports whether the request carried the session's CSRF token.
	// Handlers that mutate state must not proceed when it is false.
	CSRFValid bool
}

// IsAuthenticated reports whether a user is resolved.
func (i Identity) IsAuthenticated() bool { return i.User != nil }

// Label returns the user id in decimal form, or guest when no user is resolved.
func (i Identity) Label(guest string) string {
	if i.User == nil {
		return guest
	}
	return strconv.FormatInt(i.User.ID, 10)
}

type identityContextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// UserFromContext returns the resolved user, or nil.
func UserFromContext(ctx context.Context) *user.User {
	id, _ := IdentityFromContext(ctx)
	return id.User
}

// LoggerExtractor adds user_id to records logged with a request context that
// carries an authenticated Identity.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		u := UserFromContext(ctx)
		if u == nil {
			return slog.Attr{}, false
		}
		return logger.UserID(&u.ID), true
	}
}
