package csrf_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twilight/pkg/csrf"
)

func TestIssue(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		tok, err := csrf.Issue()
		require.NoError(t, err)

		id, err := uuid.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), id.Version())

		_, dup := seen[tok]
		require.False(t, dup)
		seen[tok] = struct{}{}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		expected  string
		submitted string
		want      bool
	}{
		{"match", "tok", "tok", true},
		{"mismatch", "tok", "other", false},
		{"missing header", "tok", "", false},
		{"session has no token", "", "tok", false},
		{"both empty", "", "", false},
		{"prefix", "token", "tok", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, csrf.Validate(tt.expected, tt.submitted))
		})
	}
}

func TestValidator(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("X-CSRF-Token", "abc")

	assert.True(t, csrf.NewValidator("abc", "")(r))
	assert.False(t, csrf.NewValidator("xyz", "")(r))

	r.Header.Set("X-Custom", "abc")
	assert.True(t, csrf.NewValidator("abc", "X-Custom")(r))
}

func TestRequire(t *testing.T) {
	t.Parallel()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})
	mw := csrf.Require(func(*http.Request) csrf.Validator {
		return csrf.NewValidator("good", "")
	}, nil)

	t.Run("rejects before handler runs", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(csrf.DefaultHeader, "bad")

		mw(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, called)
	})

	t.Run("passes matching token", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(csrf.DefaultHeader, "good")

		mw(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, called)
	})

	t.Run("nil validator fails", func(t *testing.T) {
		var gotErr error
		mw := csrf.Require(func(*http.Request) csrf.Validator { return nil },
			func(w http.ResponseWriter, _ *http.Request, err error) {
				gotErr = err
				w.WriteHeader(http.StatusTeapot)
			})
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.ErrorIs(t, gotErr, csrf.ErrInvalid)
	})
}
