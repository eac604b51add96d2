package auth

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/twilight/pkg/csrf"
	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/session"
)

// ErrorFunc writes the response for a rejected request.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

func defaultErrorFunc(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, csrf.ErrInvalid):
		status = http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, session.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	http.Error(w, http.StatusText(status), status)
}

// Middleware resolves the request identity, starts a guest session when
// needed and attaches both the Identity and the session to the context.
func Middleware(res *Resolver, mgr *session.Manager, onError ErrorFunc) func(http.Handler) http.Handler {
	if onError == nil {
		onError = defaultErrorFunc
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id, err := res.ResolveIdentity(ctx, r.Header)
			if err != nil {
				res.log.ErrorContext(ctx, "resolve identity", logger.Error(err))
				onError(w, r, err)
				return
			}

			if id.Session == nil {
				sess, err := mgr.Start(ctx, w, nil)
				if err != nil {
					res.log.ErrorContext(ctx, "start guest session", logger.Error(err))
					onError(w, r, err)
					return
				}
				id.Session = sess
				id.CSRFValid = res.ValidateCSRF(sess, r.Header)
			}

			ctx = session.WithSession(ctx, id.Session)
			ctx = WithIdentity(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests without a resolved user with ErrUnauthorized.
func RequireUser(onError ErrorFunc) func(http.Handler) http.Handler {
	if onError == nil {
		onError = defaultErrorFunc
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFromContext(r.Context()) == nil {
				onError(w, r, ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCSRF rejects requests whose CSRF header does not match the session
// token, before the wrapped handler can cause any side effect.
func (res *Resolver) RequireCSRF(onError ErrorFunc) func(http.Handler) http.Handler {
	if onError == nil {
		onError = defaultErrorFunc
	}
	return csrf.Require(func(r *http.Request) csrf.Validator {
		sess, _ := session.FromContext(r.Context())
		return res.CSRFValidator(sess)
	}, onError)
}
