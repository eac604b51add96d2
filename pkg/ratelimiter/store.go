package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state.
type Store interface {
	// ConsumeTokens refills the bucket for key and takes tokens from it when
	// enough are available. remaining is what is left afterwards, or the
	// shortfall as a negative number when nothing was taken. Zero tokens
	// only refills.
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)

	Reset(ctx context.Context, key string) error
}
