// Package ratelimiter throttles requests with a token bucket.
//
// A Bucket holds Capacity tokens per key and refills RefillRate tokens every
// RefillInterval. Denied requests consume nothing, so a client that keeps
// hammering an exhausted bucket is allowed again as soon as the next refill
// lands.
//
// Two stores are provided: MemoryStore for single instance deployments and
// RedisStore, which runs the refill and consume step as one Lua script so
// several instances share the same budget.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.NewBucket(store, cfg)
//	if err != nil {
//		return err
//	}
//	r.With(ratelimiter.Middleware(limiter, byIP, onError)).Post("/login", login)
//
// Middleware sets the X-RateLimit-* headers on every response and reports
// ErrLimitExceeded through the supplied error function once the bucket is
// empty.
package ratelimiter
