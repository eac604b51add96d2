package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/sanitizer"
	"github.com/dmitrymomot/twilight/pkg/user"
	"github.com/dmitrymomot/twilight/pkg/validator"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordLength = 72
)

// PasswordService registers and authenticates users with email and password.
type PasswordService struct {
	users      user.Repository
	bcryptCost int
	log        *slog.Logger
}

type PasswordOption func(*PasswordService)

func WithBcryptCost(cost int) PasswordOption {
	return func(s *PasswordService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

func WithPasswordLogger(log *slog.Logger) PasswordOption {
	return func(s *PasswordService) {
		if log != nil {
			s.log = log
		}
	}
}

func NewPasswordService(users user.Repository, opts ...PasswordOption) *PasswordService {
	s := &PasswordService{
		users:      users,
		bcryptCost: bcrypt.DefaultCost,
		log:        logger.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("password"))
	return s
}

// Register validates input, hashes the password and creates the user with a
// fresh API key. A taken email returns ErrEmailAlreadyExists and creates
// nothing. Invalid input returns validator.Errors.
func (s *PasswordService) Register(ctx context.Context, email, password string) (*user.User, error) {
	email = user.NormalizeEmail(email)
	if err := validator.Apply(
		validator.Required("email", email),
		validator.ValidEmail("email", email),
		validator.MinLen("password", password, minPasswordLength),
		validator.MaxLen("password", password, maxPasswordLength),
	); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	key, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}
	apiKey := key.String()

	u, err := s.users.Create(ctx, email, string(hash), &apiKey)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", logger.UserID(&u.ID))
	return u, nil
}

// Authenticate returns the user for a matching email and password.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (s *PasswordService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.users.FindByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.log.InfoContext(ctx, "unknown email", slog.String("email", sanitizer.MaskEmail(email)))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.InfoContext(ctx, "password mismatch", logger.UserID(&u.ID))
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
