package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/twilight/pkg/auth"
	"github.com/dmitrymomot/twilight/pkg/user"
)

func TestIdentity(t *testing.T) {
	t.Parallel()

	guest := auth.Identity{}
	assert.False(t, guest.IsAuthenticated())
	assert.Equal(t, "guest", guest.Label("guest"))

	member := auth.Identity{User: &user.User{ID: 17, Email: "m@example.com"}}
	assert.True(t, member.IsAuthenticated())
	assert.Equal(t, "17", member.Label("guest"))

	ctx := auth.WithIdentity(context.Background(), member)
	got, ok := auth.IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, member, got)
	assert.Equal(t, int64(17), auth.UserFromContext(ctx).ID)
	assert.Nil(t, auth.UserFromContext(context.Background()))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := auth.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	_, ok = extract(auth.WithIdentity(context.Background(), auth.Identity{}))
	assert.False(t, ok, "guests carry no user id")

	attr, ok := extract(auth.WithIdentity(context.Background(), auth.Identity{User: &user.User{ID: 5}}))
	assert.True(t, ok)
	assert.Equal(t, "user_id", attr.Key)
	assert.Equal(t, int64(5), attr.Value.Int64())
}
