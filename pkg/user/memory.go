package user

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is a process-local Repository for tests and single-node
// development setups.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int64]*User)}
}

func (r *MemoryRepository) Create(_ context.Context, email, passwordHash string, apiKey *string) (*User, error) {
	email = NormalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Email == email {
			return nil, ErrEmailTaken
		}
	}

	r.nextID++
	u := &User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if apiKey != nil {
		k := *apiKey
		u.APIKey = &k
	}
	r.byID[u.ID] = u
	return copyUser(u), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.byID[id]; ok {
		return copyUser(u), nil
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	return r.find(func(u *User) bool { return u.Email == email })
}

func (r *MemoryRepository) FindByAPIKey(_ context.Context, key string) (*User, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	return r.find(func(u *User) bool { return u.APIKey != nil && *u.APIKey == key })
}

func (r *MemoryRepository) find(match func(*User) bool) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func copyUser(u *User) *User {
	c := *u
	if u.APIKey != nil {
		k := *u.APIKey
		c.APIKey = &k
	}
	return &c
}
