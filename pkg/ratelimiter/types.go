package ratelimiter

import (
	"fmt"
	"time"
)

// Result describes one rate limit decision.
type Result struct {
	Limit     int       // bucket capacity
	Remaining int       // tokens left; negative when the request was denied
	ResetAt   time.Time // next refill
	now       time.Time
}

// Allowed reports whether the request fit in the bucket.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long a denied caller should wait. Zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(r.now), 0)
}

// Config defines the bucket shape.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"30s"`
}

// DefaultConfig allows a burst of 10 and one more attempt every 30 seconds.
func DefaultConfig() Config {
	return Config{Capacity: 10, RefillRate: 1, RefillInterval: 30 * time.Second}
}

func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// idleTTL is how long an untouched bucket takes to refill completely, plus
// one interval. Past that point its state is indistinguishable from a new one.
func (c Config) idleTTL() time.Duration {
	return time.Duration(c.Capacity/c.RefillRate+1) * c.RefillInterval
}

// refill returns the token count after the intervals elapsed since refilledAt
// and the new refill mark.
func (c Config) refill(tokens int, refilledAt, now time.Time) (int, time.Time) {
	elapsed := now.Sub(refilledAt)
	if elapsed < c.RefillInterval {
		return tokens, refilledAt
	}
	// capped so huge gaps cannot overflow the multiplication
	intervals := min(int64(elapsed/c.RefillInterval), int64(c.Capacity/c.RefillRate+1))
	return min(tokens+int(intervals)*c.RefillRate, c.Capacity), now
}
