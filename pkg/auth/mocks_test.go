package auth_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/twilight/pkg/user"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) Create(ctx context.Context, email, passwordHash string, apiKey *string) (*user.User, error) {
	args := m.Called(ctx, email, passwordHash, apiKey)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) FindByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) FindByAPIKey(ctx context.Context, key string) (*user.User, error) {
	args := m.Called(ctx, key)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}
