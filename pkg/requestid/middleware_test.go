package requestid_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/requestid"
)

func serve(t *testing.T, mw func(http.Handler) http.Handler, header string) (ctxID string, rec *httptest.ResponseRecorder) {
	t.Helper()
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = requestid.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(requestid.Header, header)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return ctxID, rec
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("generates uuid v7", func(t *testing.T) {
		t.Parallel()
		id, rec := serve(t, requestid.Middleware(), "")
		require.NotEmpty(t, id)
		assert.Equal(t, id, rec.Header().Get(requestid.Header))

		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	})

	t.Run("reuses valid client id", func(t *testing.T) {
		t.Parallel()
		id, rec := serve(t, requestid.Middleware(), "client-id_42")
		assert.Equal(t, "client-id_42", id)
		assert.Equal(t, "client-id_42", rec.Header().Get(requestid.Header))
	})

	t.Run("replaces invalid client id", func(t *testing.T) {
		t.Parallel()
		for _, bad := range []string{"has space", "new\nline", strings.Repeat("a", 129), "<script>"} {
			id, _ := serve(t, requestid.Middleware(), bad)
			assert.NotEqual(t, bad, id)
			assert.True(t, requestid.IsValid(id))
		}
	})

	t.Run("ignore client id", func(t *testing.T) {
		t.Parallel()
		id, _ := serve(t, requestid.Middleware(
			requestid.IgnoreClientID(),
			requestid.WithGenerator(func() string { return "fixed" }),
		), "client-id")
		assert.Equal(t, "fixed", id)
	})
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestid.FromContext(context.Background()))
	assert.Equal(t, "abc", requestid.FromContext(requestid.WithContext(context.Background(), "abc")))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithFormat(logger.FormatJSON),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	log.InfoContext(requestid.WithContext(context.Background(), "req-1"), "hello")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)

	buf.Reset()
	log.InfoContext(context.Background(), "no id")
	assert.NotContains(t, buf.String(), "request_id")

	_, ok := requestid.LoggerExtractor()(context.Background())
	assert.False(t, ok)
}
