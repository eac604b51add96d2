// Package account mounts the JSON API for guest registration and login,
// logout, the profile endpoint, flash publishing and the realtime sockets.
//
//	r.Mount("/", account.Router(account.RouterOptions{
//	    Resolver:  resolver,
//	    Sessions:  sessions,
//	    Passwords: passwords,
//	    Realtime:  hub,
//	    Sockets:   sockets,
//	}))
//
// Every /api route runs behind auth.Middleware, so a guest session exists
// before the handler runs. State-changing routes additionally require the
// CSRF header to match the session token.
package account
