package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/twilight/pkg/cookie"
	"github.com/dmitrymomot/twilight/pkg/csrf"
	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/session"
	"github.com/dmitrymomot/twilight/pkg/user"
)

// APIKeyHeader carries an API key as an alternative to a bearer token.
const APIKeyHeader = "X-API-Key"

// Resolver turns request headers into an Identity.
type Resolver struct {
	store      session.Store
	users      user.Repository
	cookieName string
	csrfHeader string
	log        *slog.Logger
}

type ResolverOption func(*Resolver)

func WithResolverLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

func NewResolver(store session.Store, users user.Repository, cfg session.Config, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:      store,
		users:      users,
		cookieName: cfg.CookieName,
		csrfHeader: cfg.CSRFHeaderName,
		log:        logger.Noop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(logger.Component("auth"))
	return r
}

// ResolveIdentity reads the session cookie and API key from h. A missing or
// expired session yields an Identity with a nil Session. Errors are returned
// only when a backend cannot answer and wrap session.ErrStoreUnavailable.
func (r *Resolver) ResolveIdentity(ctx context.Context, h http.Header) (Identity, error) {
	var id Identity

	if sid, err := cookie.FromHeader(h, r.cookieName); err == nil {
		sess, err := r.store.Get(ctx, sid)
		switch {
		case err == nil:
			id.Session = sess
		case errors.Is(err, session.ErrNotFound):
		default:
			return Identity{}, err
		}
	}

	if id.Session != nil && id.Session.UserID != nil {
		u, err := r.store.GetUser(ctx, *id.Session.UserID)
		if err != nil {
			return Identity{}, err
		}
		id.User = u
	}

	if key := APIKeyFromHeader(h); key != "" {
		u, err := r.users.FindByAPIKey(ctx, key)
		switch {
		case err == nil:
			id.User = u
			id.ViaAPIKey = true
		case errors.Is(err, user.ErrNotFound):
			// A presented but unknown key never falls back to the session user.
			r.log.InfoContext(ctx, "unknown api key")
			id.User = nil
		default:
			return Identity{}, errors.Join(session.ErrStoreUnavailable, err)
		}
	}

	id.CSRFValid = r.ValidateCSRF(id.Session, h)
	return id, nil
}

// ValidateCSRF checks the header token against the token stored in sess.
func (r *Resolver) ValidateCSRF(sess *session.Session, h http.Header) bool {
	if sess == nil {
		return false
	}
	return csrf.Validate(sess.CSRFToken, h.Get(r.headerName()))
}

// CSRFValidator returns a validator bound to the session token.
func (r *Resolver) CSRFValidator(sess *session.Session) csrf.Validator {
	if sess == nil {
		return nil
	}
	return csrf.NewValidator(sess.CSRFToken, r.headerName())
}

func (r *Resolver) headerName() string {
	if r.csrfHeader == "" {
		return csrf.DefaultHeader
	}
	return r.csrfHeader
}

// APIKeyFromHeader returns the X-API-Key header, or the token of an
// "Authorization: Bearer" header.
func APIKeyFromHeader(h http.Header) string {
	if key := strings.TrimSpace(h.Get(APIKeyHeader)); key != "" {
		return key
	}
	const prefix = "bearer "
	authz := strings.TrimSpace(h.Get("Authorization"))
	if len(authz) > len(prefix) && strings.EqualFold(authz[:len(prefix)], prefix) {
		return strings.TrimSpace(authz[len(prefix):])
	}
	return ""
}
