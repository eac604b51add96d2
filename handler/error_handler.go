package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/twilight/pkg/binder"
	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/validator"
)

// ErrorInfo is the classified form of an error.
type ErrorInfo struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string][]string
	LogLevel   slog.Level
}

// Classify maps an error to its HTTP representation. It knows request
// decoding, validation and HTTPError; domain errors reach it already joined
// with an HTTPError by the module that owns them.
func Classify(err error) ErrorInfo {
	info := func(status int, code string) ErrorInfo {
		return ErrorInfo{StatusCode: status, Code: code, Message: http.StatusText(status)}
	}

	var (
		res     ErrorInfo
		verrs   validator.Errors
		httpErr HTTPError
	)
	switch {
	case err == nil:
		res = info(http.StatusInternalServerError, "internal_error")
	case errors.As(err, &verrs):
		res = info(http.StatusUnprocessableEntity, "validation_error")
		res.Details = make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			res.Details[fe.Field] = append(res.Details[fe.Field], fe.Message)
		}
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		res = info(http.StatusUnsupportedMediaType, "unsupported_media_type")
	case errors.Is(err, binder.ErrBodyTooLarge):
		res = info(http.StatusRequestEntityTooLarge, "request_entity_too_large")
	case errors.Is(err, binder.ErrFailedToParseJSON):
		res = info(http.StatusBadRequest, "bad_request")
	case errors.As(err, &httpErr):
		res = info(httpErr.Code, httpErr.Key)
	default:
		res = info(http.StatusInternalServerError, "internal_error")
	}

	res.LogLevel = slog.LevelError
	if res.StatusCode < http.StatusInternalServerError {
		res.LogLevel = slog.LevelWarn
	}
	return res
}

// NewErrorHandler logs err at a level matching its class and renders it
// with JSONError.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	write := NewHTTPErrorFunc(log)
	return func(ctx Context, err error) {
		write(ctx.ResponseWriter(), ctx.Request(), err)
	}
}

// NewHTTPErrorFunc is NewErrorHandler for plain net/http middleware such as
// the session or rate limit middleware.
func NewHTTPErrorFunc(log *slog.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	if log == nil {
		log = logger.Noop()
	}
	log = log.With(logger.Component("error_handler"))

	return func(w http.ResponseWriter, r *http.Request, err error) {
		info := Classify(err)
		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		if renderErr := JSONError(err).Render(w, r); renderErr != nil {
			log.ErrorContext(r.Context(), "render error response", logger.Error(renderErr))
		}
	}
}

// NotFound and MethodNotAllowed render router misses in the JSON envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	_ = JSONError(ErrNotFound).Render(w, r)
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = JSONError(ErrMethodNotAllowed).Render(w, r)
}
