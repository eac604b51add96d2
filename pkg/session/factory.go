package session

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/twilight/pkg/pg"
	"github.com/dmitrymomot/twilight/pkg/user"
)

// Dependencies are the backend clients NewStore may need. Only the client
// for the configured backend is required.
type Dependencies struct {
	Users  user.Repository
	Redis  redis.Cmdable
	DB     pg.Querier
	Logger *slog.Logger
}

// NewStore builds the backend named by cfg.Storage.
func NewStore(cfg Config, deps Dependencies) (Store, error) {
	if deps.Users == nil {
		return nil, fmt.Errorf("%w: user repository", ErrMissingDepends)
	}

	opts := []StoreOption{
		WithTTL(cfg.TTL),
		WithTimeout(cfg.StoreTimeout),
		WithLogger(deps.Logger),
	}

	switch cfg.Storage {
	case BackendMemory:
		capacity := cfg.MemoryCount
		if capacity <= 0 {
			capacity = DefaultConfig().MemoryCount
		}
		return NewMemoryStore(capacity, deps.Users, opts...), nil
	case BackendRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("%w: redis client", ErrMissingDepends)
		}
		return NewRedisStore(deps.Redis, deps.Users, opts...), nil
	case BackendDB:
		if deps.DB == nil {
			return nil, fmt.Errorf("%w: database pool", ErrMissingDepends)
		}
		return NewPostgresStore(deps.DB, deps.Users, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Storage)
	}
}
