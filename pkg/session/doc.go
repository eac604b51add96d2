// Package session persists server-side sessions and issues the session and
// CSRF cookies that bind a browser to them.
//
// A Store has exactly five operations (Get, Set, Delete, CreateNew, GetUser)
// and three interchangeable backends selected by configuration:
//
//   - memory: a bounded in-process LRU with per-entry TTL
//   - redis: JSON records under "session:<id>" with a native TTL
//   - db: the PostgreSQL sessions table
//
// All backends agree on expiry: Get never returns a session whose ExpiresAt
// is not in the future. Backend connectivity failures surface as
// ErrStoreUnavailable and are never reported as ErrNotFound, so callers can
// refuse to mint guest sessions during an outage.
//
// Manager sits on top of a Store and handles the HTTP side: starting guest
// sessions, rotating the session on login and clearing it on logout.
package session
