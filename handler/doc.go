// Package handler turns typed request handlers into http.HandlerFunc values
// and renders their results and errors as JSON.
//
// A handler receives a Context and a request struct filled by the configured
// binder and returns a Response:
//
//	login := handler.HandlerFunc[loginRequest](func(ctx handler.Context, req loginRequest) handler.Response {
//	    u, err := passwords.Authenticate(ctx, req.Email, req.Password)
//	    if err != nil {
//	        return handler.JSONError(err)
//	    }
//	    return handler.JSON(profile(u))
//	})
//
//	r.Post("/api/guest/login", handler.Wrap(login,
//	    handler.WithBinder[loginRequest](binder.JSON()),
//	    handler.WithErrorHandler[loginRequest](handler.NewErrorHandler(log)),
//	))
//
// Errors are translated to status codes in one place, Classify. Subsystem
// packages only return their sentinel errors; the mapping to 401, 403, 409,
// 422 or 503 happens here at the HTTP boundary. The JSON error body is
//
//	{"error":{"code":"csrf_invalid","message":"Forbidden"}}
package handler
