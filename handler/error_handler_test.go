package handler_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twilight/handler"
	"github.com/dmitrymomot/twilight/pkg/binder"
	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/validator"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"malformed json", fmt.Errorf("%w: eof", binder.ErrFailedToParseJSON), http.StatusBadRequest, "bad_request"},
		{"media type", binder.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "unsupported_media_type"},
		{"too large", binder.ErrBodyTooLarge, http.StatusRequestEntityTooLarge, "request_entity_too_large"},
		{"http error", handler.ErrNotFound, http.StatusNotFound, "not_found"},
		{"joined http error", errors.Join(handler.ErrServiceUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable, "service_unavailable"},
		{"custom key", fmt.Errorf("login: %w", handler.NewHTTPError(http.StatusConflict, "email_taken")), http.StatusConflict, "email_taken"},
		{"too many requests", handler.ErrTooManyRequests, http.StatusTooManyRequests, "too_many_requests"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			info := handler.Classify(tt.err)
			assert.Equal(t, tt.status, info.StatusCode)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, http.StatusText(tt.status), info.Message)
		})
	}

	t.Run("validation details", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("email", ""),
			validator.MinLen("password", "abc", 6),
		)
		info := handler.Classify(err)
		assert.Equal(t, http.StatusUnprocessableEntity, info.StatusCode)
		assert.Equal(t, "validation_error", info.Code)
		assert.Contains(t, info.Details, "email")
		assert.Contains(t, info.Details, "password")
		assert.Equal(t, slog.LevelWarn, info.LogLevel)
	})

	t.Run("log level", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, slog.LevelError, handler.Classify(errors.New("x")).LogLevel)
		assert.Equal(t, slog.LevelWarn, handler.Classify(handler.ErrForbidden).LogLevel)
	})
}

func TestNewErrorHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatJSON))
	onError := handler.NewErrorHandler(log)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	onError(handler.NewContext(rec, req), errors.Join(handler.NewHTTPError(http.StatusForbidden, "csrf_invalid"), errors.New("token mismatch")))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decode(t, rec)
	require.NotNil(t, body.Error)
	assert.Equal(t, "csrf_invalid", body.Error.Code)
	assert.Equal(t, "Forbidden", body.Error.Message)

	assert.Contains(t, buf.String(), `"status_code":403`)
	assert.Contains(t, buf.String(), `"path":"/api/logout"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestRouterFallbacks(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handler.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	handler.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPut, "/api/profile", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method_not_allowed", decode(t, rec).Error.Code)
}
