// Package logger builds *slog.Logger instances used across the service.
//
// New returns a logger whose handler is wrapped by LogHandlerDecorator so that
// request-scoped values (request id, session id) stored in context.Context are
// attached to every record logged with a *Context method.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.AppEnv, cfg.AppName),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "session created", logger.SessionID(sess.ID))
//
// Attribute helpers in attr.go keep key names consistent. Helpers that take an
// error or an optional value return an empty slog.Attr for nil input, which
// slog drops, so callers do not need nil checks.
package logger
