package account

import (
	"context"
	"log/slog"
	"slices"
	"strconv"

	"github.com/dmitrymomot/twilight/handler"
	"github.com/dmitrymomot/twilight/pkg/auth"
	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/realtime"
	"github.com/dmitrymomot/twilight/pkg/sanitizer"
	"github.com/dmitrymomot/twilight/pkg/session"
	"github.com/dmitrymomot/twilight/pkg/user"
	"github.com/dmitrymomot/twilight/pkg/validator"
)

// FlashTargetAll addresses every flash socket.
const FlashTargetAll = "all"

const maxFlashLength = 1000

var cleanFlash = sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.Trim)

// Authenticator registers and authenticates users by email and password.
type Authenticator interface {
	Register(ctx context.Context, email, password string) (*user.User, error)
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
}

// Publisher delivers flash messages to live sockets.
type Publisher interface {
	PublishFlash(ctx context.Context, identity, message string) int
	PublishFlashAll(ctx context.Context, message string) int
}

type Service struct {
	sessions    *session.Manager
	passwords   Authenticator
	flash       Publisher
	flashAdmins []int64
	log         *slog.Logger
}

func NewService(sessions *session.Manager, passwords Authenticator, flash Publisher, flashAdmins []int64, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Noop()
	}
	if flash == nil {
		flash = noopPublisher{}
	}
	return &Service{
		sessions:    sessions,
		passwords:   passwords,
		flash:       flash,
		flashAdmins: flashAdmins,
		log:         log.With(logger.Component("account")),
	}
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

// Register creates the user and logs them in on a fresh session.
func (s *Service) Register(ctx handler.Context, req CredentialsRequest) handler.Response {
	u, err := s.passwords.Register(ctx, req.Email, req.Password)
	if err != nil {
		return renderError(err)
	}
	if _, err := s.sessions.Login(ctx, ctx.ResponseWriter(), ctx.Request(), u.ID); err != nil {
		return renderError(err)
	}
	return handler.JSON(AuthResponse{Message: "Registered", UserID: u.ID})
}

// Login replaces the guest session with an authenticated one. Wrong
// credentials leave the current session untouched.
func (s *Service) Login(ctx handler.Context, req CredentialsRequest) handler.Response {
	if err := validator.Apply(
		validator.Required("email", req.Email),
		validator.Required("password", req.Password),
	); err != nil {
		return renderError(err)
	}

	u, err := s.passwords.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return renderError(err)
	}
	if _, err := s.sessions.Login(ctx, ctx.ResponseWriter(), ctx.Request(), u.ID); err != nil {
		return renderError(err)
	}
	return handler.JSON(AuthResponse{Message: "Logged in", UserID: u.ID})
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (s *Service) Logout(ctx handler.Context, _ struct{}) handler.Response {
	if err := s.sessions.Logout(ctx, ctx.ResponseWriter(), ctx.Request()); err != nil {
		return renderError(err)
	}
	return handler.JSON(MessageResponse{Message: "Logged out"})
}

type ProfileResponse struct {
	ID     int64   `json:"id"`
	Email  string  `json:"email"`
	APIKey *string `json:"api_key"`
}

func (s *Service) Profile(ctx handler.Context, _ struct{}) handler.Response {
	u := auth.UserFromContext(ctx)
	if u == nil {
		return renderError(auth.ErrUnauthorized)
	}
	return handler.JSON(ProfileResponse{ID: u.ID, Email: u.Email, APIKey: u.APIKey})
}

type FlashRequest struct {
	Message string `json:"message"`
	// Target is a user id or "all". Empty means the caller.
	Target string `json:"target,omitempty"`
}

type FlashResponse struct {
	Delivered int `json:"delivered"`
}

// Flash pushes a message to the caller's own flash sockets. Flash admins may
// address any user id or every socket.
func (s *Service) Flash(ctx handler.Context, req FlashRequest) handler.Response {
	u := auth.UserFromContext(ctx)
	if u == nil {
		return renderError(auth.ErrUnauthorized)
	}
	req.Message = cleanFlash(req.Message)
	if err := validator.Apply(
		validator.Required("message", req.Message),
		validator.MaxLen("message", req.Message, maxFlashLength),
	); err != nil {
		return renderError(err)
	}

	self := strconv.FormatInt(u.ID, 10)
	target := sanitizer.Trim(req.Target)
	if target == "" {
		target = self
	}
	if target != self && !slices.Contains(s.flashAdmins, u.ID) {
		return renderError(handler.ErrForbidden)
	}

	var delivered int
	if target == FlashTargetAll {
		delivered = s.flash.PublishFlashAll(ctx, req.Message)
	} else {
		delivered = s.flash.PublishFlash(ctx, target, req.Message)
	}
	s.log.InfoContext(ctx, "flash published",
		logger.UserID(&u.ID), logger.Identity(target), logger.Count(delivered))
	return handler.JSON(FlashResponse{Delivered: delivered})
}

type noopPublisher struct{}

func (noopPublisher) PublishFlash(context.Context, string, string) int { return 0 }
func (noopPublisher) PublishFlashAll(context.Context, string) int      { return 0 }

var _ Publisher = (*realtime.Manager)(nil)
