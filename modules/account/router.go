package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/twilight/handler"
	"github.com/dmitrymomot/twilight/pkg/auth"
	"github.com/dmitrymomot/twilight/pkg/binder"
	"github.com/dmitrymomot/twilight/pkg/clientip"
	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/ratelimiter"
	"github.com/dmitrymomot/twilight/pkg/realtime"
	"github.com/dmitrymomot/twilight/pkg/session"
)

type RouterOptions struct {
	Resolver  *auth.Resolver
	Sessions  *session.Manager
	Passwords Authenticator
	Realtime  *realtime.Manager
	// FlashAdmins may publish flash messages to any identity or to all.
	FlashAdmins []int64
	// Limiter throttles register and login per client address. Nil disables it.
	Limiter ratelimiter.RateLimiter
	Logger  *slog.Logger
}

// Router builds the account API and socket routes.
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	onError := newHTTPErrorFunc(log)
	errorHandler := newErrorHandler(log)
	var flash Publisher
	if opts.Realtime != nil {
		flash = opts.Realtime
	}
	svc := NewService(opts.Sessions, opts.Passwords, flash, opts.FlashAdmins, log)

	r := chi.NewRouter()
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.Middleware(opts.Resolver, opts.Sessions, onError))

		api.Group(func(guest chi.Router) {
			guest.Use(opts.Resolver.RequireCSRF(onError))

			throttled := guest.With()
			if opts.Limiter != nil {
				throttled = guest.With(ratelimiter.Middleware(opts.Limiter, clientip.KeyFunc("auth:"), onError))
			}
			throttled.Post("/guest/register", handler.Wrap(svc.Register,
				handler.WithBinder[CredentialsRequest](binder.JSON()),
				handler.WithErrorHandler[CredentialsRequest](errorHandler),
			))
			throttled.Post("/guest/login", handler.Wrap(svc.Login,
				handler.WithBinder[CredentialsRequest](binder.JSON()),
				handler.WithErrorHandler[CredentialsRequest](errorHandler),
			))
			guest.Post("/logout", handler.Wrap(svc.Logout,
				handler.WithErrorHandler[struct{}](errorHandler),
			))
		})

		api.Group(func(protected chi.Router) {
			protected.Use(auth.RequireUser(onError))

			protected.Get("/profile", handler.Wrap(svc.Profile,
				handler.WithErrorHandler[struct{}](errorHandler),
			))
			protected.With(opts.Resolver.RequireCSRF(onError)).Post("/flash", handler.Wrap(svc.Flash,
				handler.WithBinder[FlashRequest](binder.JSON()),
				handler.WithErrorHandler[FlashRequest](errorHandler),
			))
		})
	})

	if opts.Realtime != nil {
		sockets := realtime.NewHandlers(opts.Realtime,
			SocketIdentity(opts.Resolver, opts.Realtime.Config().GuestLabel),
			realtime.WithErrorHandler(onError),
			realtime.WithHandlerLogger(log),
		)
		r.Get("/ws", sockets.ChatHandler())
		r.Get("/ws/flash", sockets.FlashHandler())
	}

	return r
}

// SocketIdentity resolves a socket's identity the same way as API requests:
// user id when authenticated, guest otherwise. Store outages refuse the
// upgrade.
func SocketIdentity(res *auth.Resolver, guest string) realtime.IdentityFunc {
	return func(r *http.Request) (string, error) {
		id, err := res.ResolveIdentity(r.Context(), r.Header)
		if err != nil {
			return "", err
		}
		return id.Label(guest), nil
	}
}
