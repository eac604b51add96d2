// Package httpserver runs an http.Handler until its context is cancelled and
// then shuts it down gracefully.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	g.Go(func() error { return srv.Run(ctx, router) })
//
// It also provides the liveness and readiness handlers and the access log
// middleware used by the router.
package httpserver
