package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/pg"
	"github.com/dmitrymomot/twilight/pkg/user"
)

// PostgresStore keeps sessions in the sessions table.
type PostgresStore struct {
	base
	db pg.Querier
}

func NewPostgresStore(db pg.Querier, users user.Repository, opts ...StoreOption) *PostgresStore {
	return &PostgresStore{base: newBase(users, BackendDB, opts), db: db}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	const query = `SELECT id, user_id, csrf_token, created_at, expires_at FROM sessions WHERE id = $1`

	var (
		sess  Session
		token *string
	)
	err := s.db.QueryRow(ctx, query, id).Scan(&sess.ID, &sess.UserID, &token, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}
	if token != nil {
		sess.CSRFToken = *token
	}

	if sess.IsExpired(s.now()) {
		// DeleteExpired sweeps whatever this misses
		if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
			s.log.WarnContext(ctx, "failed to remove expired session", logger.SessionID(id), logger.Error(err))
		}
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *PostgresStore) Set(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidSession
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	const query = `
		INSERT INTO sessions (id, user_id, csrf_token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			csrf_token = EXCLUDED.csrf_token,
			expires_at = EXCLUDED.expires_at`

	var token *string
	if sess.CSRFToken != "" {
		token = &sess.CSRFToken
	}
	if _, err := s.db.Exec(ctx, query, sess.ID, sess.UserID, token, sess.CreatedAt, sess.ExpiresAt); err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return errors.Join(ErrInvalidSession, err)
		}
		return unavailable(err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return unavailable(err)
	}
	return nil
}

// DeleteExpired removes every expired row and returns how many were deleted.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, unavailable(err)
	}
	return tag.RowsAffected(), nil
}
