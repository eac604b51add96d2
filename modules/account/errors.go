package account

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/twilight/handler"
	"github.com/dmitrymomot/twilight/pkg/auth"
	"github.com/dmitrymomot/twilight/pkg/csrf"
	"github.com/dmitrymomot/twilight/pkg/ratelimiter"
	"github.com/dmitrymomot/twilight/pkg/session"
)

var (
	errCSRFInvalid        = handler.NewHTTPError(http.StatusForbidden, "csrf_invalid")
	errInvalidCredentials = handler.NewHTTPError(http.StatusUnauthorized, "invalid_credentials")
	errEmailTaken         = handler.NewHTTPError(http.StatusConflict, "email_already_exists")
)

// MapError joins domain errors with the HTTPError they render as. Store
// outages come first so an unreachable backend is never reported as a 4xx.
// Anything it does not recognise is returned unchanged.
func MapError(err error) error {
	var status error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrStoreUnavailable), errors.Is(err, ratelimiter.ErrStoreUnavailable):
		status = handler.ErrServiceUnavailable
	case errors.Is(err, ratelimiter.ErrLimitExceeded):
		status = handler.ErrTooManyRequests
	case errors.Is(err, csrf.ErrInvalid):
		status = errCSRFInvalid
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = errInvalidCredentials
	case errors.Is(err, auth.ErrUnauthorized):
		status = handler.ErrUnauthorized
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		status = errEmailTaken
	default:
		return err
	}
	return errors.Join(status, err)
}

func renderError(err error) handler.Response {
	return handler.JSONError(MapError(err))
}

func newHTTPErrorFunc(log *slog.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	write := handler.NewHTTPErrorFunc(log)
	return func(w http.ResponseWriter, r *http.Request, err error) {
		write(w, r, MapError(err))
	}
}

func newErrorHandler(log *slog.Logger) handler.ErrorHandler {
	write := handler.NewErrorHandler(log)
	return func(ctx handler.Context, err error) {
		write(ctx, MapError(err))
	}
}
