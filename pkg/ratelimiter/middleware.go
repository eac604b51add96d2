package ratelimiter

import (
	"errors"
	"net/http"
	"strconv"
	"time"
)

// KeyFunc extracts the bucket key from a request. An empty key skips the
// limiter.
type KeyFunc func(r *http.Request) string

// ErrorFunc renders a limiter failure: ErrLimitExceeded for an empty bucket,
// an error wrapping ErrStoreUnavailable when the store cannot be reached.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// Middleware throttles requests per key.
func Middleware(limiter RateLimiter, keyFunc KeyFunc, onError ErrorFunc) func(http.Handler) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			status := http.StatusTooManyRequests
			if !errors.Is(err, ErrLimitExceeded) {
				status = http.StatusServiceUnavailable
			}
			http.Error(w, http.StatusText(status), status)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				onError(w, r, err)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				// rounded up so clients never retry a moment too early
				if secs := int((result.RetryAfter() + time.Second - 1) / time.Second); secs > 0 {
					h.Set("Retry-After", strconv.Itoa(secs))
				}
				onError(w, r, ErrLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
