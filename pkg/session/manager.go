package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/twilight/pkg/cookie"
	"github.com/dmitrymomot/twilight/pkg/logger"
)

// Manager issues, rotates and clears sessions and their cookies.
type Manager struct {
	store   Store
	cfg     Config
	cookies *cookie.Manager
	log     *slog.Logger
}

type ManagerOption func(*Manager)

func WithManagerLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithCookieManager replaces the cookie manager built from Config.
func WithCookieManager(c *cookie.Manager) ManagerOption {
	return func(m *Manager) {
		if c != nil {
			m.cookies = c
		}
	}
}

func NewManager(store Store, cfg Config, opts ...ManagerOption) *Manager {
	m := &Manager{
		store: store,
		cfg:   cfg,
		cookies: cookie.New(
			cookie.WithSecure(cfg.SecureCookies),
			cookie.WithDomain(cfg.CookieDomain),
		),
		log: logger.Noop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("session"))
	return m
}

func (m *Manager) Store() Store { return m.store }

func (m *Manager) Config() Config { return m.cfg }

// CSRFHeader is the canonical name of the header carrying the CSRF token.
func (m *Manager) CSRFHeader() string { return m.cfg.csrfHeader() }

// SessionID returns the session id carried by the request cookies, or "".
func (m *Manager) SessionID(h http.Header) string {
	id, _ := cookie.FromHeader(h, m.cfg.CookieName)
	return id
}

// Start creates, persists and issues cookies for a new session. A nil userID
// starts a guest session.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, userID *int64) (*Session, error) {
	sess, err := m.store.CreateNew()
	if err != nil {
		return nil, err
	}
	if userID != nil {
		id := *userID
		sess.UserID = &id
	}

	if err := m.store.Set(ctx, sess); err != nil {
		return nil, err
	}
	m.setCookies(w, sess)

	m.log.DebugContext(ctx, "session started", logger.SessionID(sess.ID), logger.UserID(sess.UserID))
	return sess, nil
}

// Login replaces the current session with a new authenticated one. The prior
// session, whether taken from the request context or the cookie, is deleted
// so its id cannot be reused after authentication. The new session carries a
// fresh CSRF token.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, userID int64) (*Session, error) {
	for _, id := range m.priorIDs(r) {
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, err
		}
	}

	sess, err := m.Start(ctx, w, &userID)
	if err != nil {
		return nil, err
	}
	m.log.InfoContext(ctx, "user logged in", logger.SessionID(sess.ID), logger.UserID(sess.UserID))
	return sess, nil
}

// Logout deletes the current session and clears both cookies.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var errs []error
	for _, id := range m.priorIDs(r) {
		if err := m.store.Delete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	m.ClearCookies(w)
	return errors.Join(errs...)
}

// ClearCookies expires the session and CSRF cookies.
func (m *Manager) ClearCookies(w http.ResponseWriter) {
	m.cookies.Delete(w, m.cfg.CookieName)
	m.cookies.Delete(w, m.cfg.CSRFCookieName,
		cookie.WithHTTPOnly(false),
		cookie.WithSameSite(http.SameSiteStrictMode),
	)
}

func (m *Manager) setCookies(w http.ResponseWriter, sess *Session) {
	maxAge := m.cfg.MaxAge()
	m.cookies.Set(w, m.cfg.CookieName, sess.ID, cookie.WithMaxAge(maxAge))
	m.cookies.Set(w, m.cfg.CSRFCookieName, sess.CSRFToken,
		cookie.WithMaxAge(maxAge),
		cookie.WithHTTPOnly(false),
		cookie.WithSameSite(http.SameSiteStrictMode),
	)
}

func (m *Manager) priorIDs(r *http.Request) []string {
	var ids []string
	if s, ok := FromContext(r.Context()); ok {
		ids = append(ids, s.ID)
	}
	if id := m.SessionID(r.Header); id != "" && (len(ids) == 0 || ids[0] != id) {
		ids = append(ids, id)
	}
	return ids
}
