package ratelimiter

import "errors"

var (
	ErrInvalidConfig     = errors.New("ratelimiter.invalid_config")
	ErrInvalidTokenCount = errors.New("ratelimiter.invalid_token_count")
	ErrLimitExceeded     = errors.New("ratelimiter.limit_exceeded")
	ErrStoreUnavailable  = errors.New("ratelimiter.store_unavailable")
)
