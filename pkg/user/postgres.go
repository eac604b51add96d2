package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/twilight/pkg/pg"
)

const userColumns = `id, email, password_hash, api_key, created_at`

// PostgresRepository keeps users in the users table.
type PostgresRepository struct {
	db pg.Querier
}

func NewPostgresRepository(db pg.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, email, passwordHash string, apiKey *string) (*User, error) {
	const query = `INSERT INTO users (email, password_hash, api_key) VALUES ($1, $2, $3) RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRow(ctx, query, NormalizeEmail(email), passwordHash, apiKey))
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email))
}

func (r *PostgresRepository) FindByAPIKey(ctx context.Context, key string) (*User, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE api_key = $1`, key)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.APIKey, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
