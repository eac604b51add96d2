package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/user"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions as JSON strings with a Redis TTL matching
// ExpiresAt.
type RedisStore struct {
	base
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable, users user.Repository, opts ...StoreOption) *RedisStore {
	return &RedisStore{base: newBase(users, BackendRedis, opts), client: client}
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.log.WarnContext(ctx, "dropping malformed session record", logger.SessionID(id), logger.Error(err))
		if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil {
			return nil, unavailable(err)
		}
		return nil, ErrNotFound
	}

	if sess.IsExpired(s.now()) {
		// the key TTL removes it eventually; expired is not-found either way
		if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil {
			s.log.WarnContext(ctx, "failed to remove expired session", logger.SessionID(id), logger.Error(err))
		}
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Set writes the record with a whole-second TTL. A session with less than a
// second left is removed instead, which is equivalent to it expiring now.
func (s *RedisStore) Set(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidSession
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ttl := sess.ExpiresAt.Sub(s.now()).Truncate(time.Second)
	if ttl <= 0 {
		if err := s.client.Del(ctx, redisKey(sess.ID)).Err(); err != nil {
			return unavailable(err)
		}
		return nil
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(sess.ID), data, ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}
