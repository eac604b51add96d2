package session_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/pg"
	"github.com/dmitrymomot/twilight/pkg/session"
	"github.com/dmitrymomot/twilight/pkg/user"
)

// connectPostgres migrates the database behind PG_CONN_URL and returns a pool.
// The test is skipped when the variable is unset.
func connectPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("PG_CONN_URL")
	if url == "" {
		t.Skip("PG_CONN_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := pg.Config{
		ConnectionString:  url,
		MaxOpenConns:      4,
		MaxIdleConns:      1,
		HealthCheckPeriod: time.Minute,
		MaxConnIdleTime:   time.Minute,
		MaxConnLifetime:   5 * time.Minute,
		RetryAttempts:     1,
		RetryInterval:     time.Second,
		MigrationsTable:   "schema_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pg.Migrate(ctx, pool, cfg, logger.Noop()))
	return pool
}

// createUser inserts a user with a unique email and removes it, together with
// its sessions, when the test ends.
func createUser(t *testing.T, pool *pgxpool.Pool, users user.Repository) *user.User {
	t.Helper()
	ctx := context.Background()
	u, err := users.Create(ctx, uuid.NewString()+"@example.com", "hash", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, u.ID)
	})
	return u
}

func dropSession(t *testing.T, pool *pgxpool.Pool, id string) {
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM sessions WHERE id = $1`, id)
	})
}

func sessionRowExists(t *testing.T, pool *pgxpool.Pool, id string) bool {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT count(*) FROM sessions WHERE id = $1`, id).Scan(&n))
	return n > 0
}

func TestPostgresStore_Integration(t *testing.T) {
	pool := connectPostgres(t)
	ctx := context.Background()
	users := user.NewPostgresRepository(pool)

	// postgres keeps microseconds
	setup := func(t *testing.T) (*session.PostgresStore, *clock) {
		c := &clock{now: time.Now().UTC().Truncate(time.Microsecond)}
		store := session.NewPostgresStore(pool, users,
			session.WithClock(c.Now), session.WithTTL(time.Hour), session.WithTimeout(5*time.Second))
		return store, c
	}

	t.Run("round trip", func(t *testing.T) {
		store, _ := setup(t)
		u := createUser(t, pool, users)

		s, err := store.CreateNew()
		require.NoError(t, err)
		dropSession(t, pool, s.ID)
		s.UserID = &u.ID

		require.NoError(t, store.Set(ctx, s))
		got, err := store.Get(ctx, s.ID)
		require.NoError(t, err)
		assertSameSession(t, s, got)
	})

	t.Run("set is an idempotent upsert", func(t *testing.T) {
		store, c := setup(t)
		u := createUser(t, pool, users)

		s, err := store.CreateNew()
		require.NoError(t, err)
		dropSession(t, pool, s.ID)
		require.NoError(t, store.Set(ctx, s))
		require.NoError(t, store.Set(ctx, s))

		created := s.CreatedAt
		s.UserID = &u.ID
		s.CSRFToken = "rotated"
		s.CreatedAt = c.Now().Add(time.Minute)
		s.ExpiresAt = s.ExpiresAt.Add(time.Minute)
		require.NoError(t, store.Set(ctx, s))

		got, err := store.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.UserID, got.UserID)
		assert.Equal(t, "rotated", got.CSRFToken)
		assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))
		assert.True(t, created.Equal(got.CreatedAt), "created_at is kept on conflict")
	})

	t.Run("expired row is deleted on read", func(t *testing.T) {
		store, c := setup(t)
		s, err := store.CreateNew()
		require.NoError(t, err)
		dropSession(t, pool, s.ID)
		require.NoError(t, store.Set(ctx, s))

		c.Advance(time.Hour)
		_, err = store.Get(ctx, s.ID)
		assert.ErrorIs(t, err, session.ErrNotFound)
		assert.False(t, sessionRowExists(t, pool, s.ID))
	})

	t.Run("delete", func(t *testing.T) {
		store, _ := setup(t)
		s, err := store.CreateNew()
		require.NoError(t, err)
		dropSession(t, pool, s.ID)
		require.NoError(t, store.Set(ctx, s))

		require.NoError(t, store.Delete(ctx, s.ID))
		_, err = store.Get(ctx, s.ID)
		assert.ErrorIs(t, err, session.ErrNotFound)
		require.NoError(t, store.Delete(ctx, s.ID), "deleting twice is not an error")
	})

	t.Run("get unknown id", func(t *testing.T) {
		store, _ := setup(t)
		_, err := store.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("unknown user is an invalid session", func(t *testing.T) {
		store, _ := setup(t)
		s, err := store.CreateNew()
		require.NoError(t, err)
		dropSession(t, pool, s.ID)
		missing := int64(-1)
		s.UserID = &missing

		err = store.Set(ctx, s)
		assert.ErrorIs(t, err, session.ErrInvalidSession)
		assert.NotErrorIs(t, err, session.ErrStoreUnavailable)
	})

	t.Run("deleting a user removes its sessions", func(t *testing.T) {
		store, _ := setup(t)
		u := createUser(t, pool, users)
		s, err := store.CreateNew()
		require.NoError(t, err)
		dropSession(t, pool, s.ID)
		s.UserID = &u.ID
		require.NoError(t, store.Set(ctx, s))

		_, err = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, u.ID)
		require.NoError(t, err)
		assert.False(t, sessionRowExists(t, pool, s.ID))
	})

	t.Run("get user", func(t *testing.T) {
		store, _ := setup(t)
		u := createUser(t, pool, users)

		got, err := store.GetUser(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, u.Email, got.Email)

		missing, err := store.GetUser(ctx, -1)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("delete expired", func(t *testing.T) {
		store, c := setup(t)
		old, err := store.CreateNew()
		require.NoError(t, err)
		dropSession(t, pool, old.ID)
		old.ExpiresAt = c.Now().Add(time.Minute)
		require.NoError(t, store.Set(ctx, old))

		fresh, err := store.CreateNew()
		require.NoError(t, err)
		dropSession(t, pool, fresh.ID)
		require.NoError(t, store.Set(ctx, fresh))

		c.Advance(time.Minute)
		n, err := store.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1))
		assert.False(t, sessionRowExists(t, pool, old.ID))
		assert.True(t, sessionRowExists(t, pool, fresh.ID))
	})
}

func TestPostgresUserRepository_Integration(t *testing.T) {
	pool := connectPostgres(t)
	ctx := context.Background()
	users := user.NewPostgresRepository(pool)

	key := uuid.NewString()
	email := uuid.NewString() + "@example.com"
	u, err := users.Create(ctx, email, "hash", &key)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, u.ID)
	})
	assert.Positive(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	_, err = users.Create(ctx, email, "other", nil)
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	byKey, err := users.FindByAPIKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byKey.ID)

	byEmail, err := users.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = users.FindByID(ctx, -1)
	assert.ErrorIs(t, err, user.ErrNotFound)
}
