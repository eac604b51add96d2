// Package binder decodes HTTP request bodies into typed request structs.
//
//	type loginRequest struct {
//	    Email    string `json:"email"`
//	    Password string `json:"password"`
//	}
//
//	http.Handle("/api/guest/login", handler.Wrap(login,
//	    handler.WithBinder[loginRequest](binder.JSON()),
//	))
//
// Decoding is strict: unknown fields, trailing data, bodies over the size
// limit and non-JSON content types are rejected with errors wrapping
// ErrFailedToParseJSON, ErrUnsupportedMediaType or ErrMissingContentType.
package binder
