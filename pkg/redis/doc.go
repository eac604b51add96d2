// Package redis connects to Redis with retries and exposes a readiness probe.
// It backs the remote session store.
package redis
