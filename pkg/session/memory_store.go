package session

import (
	"context"

	"github.com/dmitrymomot/twilight/pkg/cache"
	"github.com/dmitrymomot/twilight/pkg/user"
)

// MemoryStore keeps sessions in a bounded LRU. Sessions beyond capacity are
// evicted least recently used first, even before they expire.
type MemoryStore struct {
	base
	lru *cache.LRU[string, Session]
}

// NewMemoryStore creates a store holding at most capacity sessions.
func NewMemoryStore(capacity int, users user.Repository, opts ...StoreOption) *MemoryStore {
	b := newBase(users, BackendMemory, opts)
	return &MemoryStore{
		base: b,
		lru: cache.NewLRU(capacity,
			cache.WithTTL[string, Session](b.ttl),
			cache.WithClock[string, Session](b.now),
		),
	}
}

// Get re-checks ExpiresAt because the cache TTL counts from the last Set, not
// from the session's own expiry. Expired sessions are left for the cache to
// evict.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	v, ok := s.lru.Get(id)
	if !ok || v.IsExpired(s.now()) {
		return nil, ErrNotFound
	}
	return v.Clone(), nil
}

func (s *MemoryStore) Set(_ context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidSession
	}
	s.lru.Put(sess.ID, *sess.Clone())
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.lru.Remove(id)
	return nil
}

// DeleteExpired drops entries whose cache TTL has passed.
func (s *MemoryStore) DeleteExpired(context.Context) (int64, error) {
	return int64(s.lru.Purge()), nil
}

// Len returns the number of cached sessions.
func (s *MemoryStore) Len() int { return s.lru.Len() }
