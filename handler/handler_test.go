package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twilight/handler"
	"github.com/dmitrymomot/twilight/pkg/binder"
)

type greetRequest struct {
	Name string `json:"name"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) handler.JSONResponse {
	t.Helper()
	var body handler.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWrap(t *testing.T) {
	t.Parallel()

	greet := handler.HandlerFunc[greetRequest](func(ctx handler.Context, req greetRequest) handler.Response {
		if req.Name == "" {
			return handler.JSONError(handler.ErrUnprocessableEntity)
		}
		return handler.JSON(map[string]string{"greeting": "hello " + req.Name})
	})
	h := handler.Wrap(greet, handler.WithBinder[greetRequest](binder.JSON()))

	t.Run("binds and renders", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ann"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{"greeting": "hello ann"}, decode(t, rec).Data)
	})

	t.Run("binder error goes to error handler", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		require.NotNil(t, body.Error)
		assert.Equal(t, "bad_request", body.Error.Code)
	})

	t.Run("handler error response", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestWrap_NilResponse(t *testing.T) {
	t.Parallel()

	var got error
	h := handler.Wrap(
		handler.HandlerFunc[struct{}](func(handler.Context, struct{}) handler.Response { return nil }),
		handler.WithErrorHandler[struct{}](func(ctx handler.Context, err error) {
			got = err
			ctx.ResponseWriter().WriteHeader(http.StatusTeapot)
		}),
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.ErrorIs(t, got, handler.ErrNilResponse)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestWrap_Decorators(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) handler.Decorator[struct{}] {
		return func(next handler.HandlerFunc[struct{}]) handler.HandlerFunc[struct{}] {
			return func(ctx handler.Context, req struct{}) handler.Response {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}
	h := handler.Wrap(
		handler.HandlerFunc[struct{}](func(handler.Context, struct{}) handler.Response {
			order = append(order, "handler")
			return handler.Empty()
		}),
		handler.WithDecorators(mark("outer"), mark("inner")),
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestContext(t *testing.T) {
	t.Parallel()

	type key struct{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(contextWith(req, key{}, "v"))
	rec := httptest.NewRecorder()

	ctx := handler.NewContext(rec, req)
	assert.Same(t, req, ctx.Request())
	assert.Equal(t, "v", ctx.Value(key{}))
	assert.NoError(t, ctx.Err())
	_, ok := ctx.Deadline()
	assert.False(t, ok)
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, handler.EmptyWithStatus(http.StatusAccepted).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("data with meta and status", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		resp := handler.JSON(map[string]int{"delivered": 2},
			handler.WithJSONMeta(map[string]any{"channel": "flash:7"}),
			handler.WithJSONStatus(http.StatusAccepted),
		)
		require.NoError(t, resp.Render(rec, httptest.NewRequest(http.MethodPost, "/", nil)))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, handler.JSONResponse{
			Data: map[string]any{"delivered": float64(2)},
			Meta: map[string]any{"channel": "flash:7"},
		}, decode(t, rec))
	})

	t.Run("error value renders as error", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		require.NoError(t, handler.JSON(errors.New("boom")).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decode(t, rec)
		assert.Nil(t, body.Data)
		require.NotNil(t, body.Error)
		assert.Equal(t, "internal_error", body.Error.Code)
		assert.NotContains(t, rec.Body.String(), "boom", "internal errors are not leaked")
	})
}
