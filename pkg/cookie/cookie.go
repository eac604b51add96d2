package cookie

import (
	"errors"
	"net/http"
	"time"
)

var ErrNotFound = errors.New("cookie.not_found")

// Manager applies default attributes to every cookie it writes.
type Manager struct {
	defaults Options
}

// New returns a manager with Path=/, HttpOnly and SameSite=Lax defaults,
// adjusted by opts.
func New(opts ...Option) *Manager {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{defaults: defaults.apply(opts)}
}

// Set writes a cookie. Per-call options override the manager defaults.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	o := m.defaults.apply(opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	})
}

// Get returns the cookie value or ErrNotFound when absent or empty.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", ErrNotFound
	}
	return c.Value, nil
}

// Delete expires the cookie immediately (Max-Age=0). Options must match the
// attributes the cookie was set with so the browser replaces it.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	o := m.defaults.apply(opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	})
}

// FromHeader reads a cookie from raw request headers, for callers that only
// hold an http.Header (socket upgrades, identity resolution).
func FromHeader(h http.Header, name string) (string, error) {
	r := &http.Request{Header: h}
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", ErrNotFound
	}
	return c.Value, nil
}
