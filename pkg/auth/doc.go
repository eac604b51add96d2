// Package auth resolves who is making a request and guards routes that need
// an identity or a valid CSRF token.
//
// Resolution order is cookie, then session, then session user. An API key,
// sent as X-API-Key or as a bearer token, replaces the session user for the
// current request only and never modifies the session.
//
// Middleware runs the resolution once per request, starts a guest session
// when no valid one exists and stores the resulting Identity in the request
// context. A session store outage fails the request instead of producing a
// guest session.
package auth
