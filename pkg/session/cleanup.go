package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/twilight/pkg/logger"
)

// Cleanup periodically removes expired sessions until ctx is done. Stores that
// do not implement Cleaner only get the heartbeat log line. It always returns
// nil so it can run inside an errgroup without tearing the process down.
func Cleanup(ctx context.Context, store Store, interval time.Duration, log *slog.Logger) error {
	if interval <= 0 {
		return nil
	}
	if log == nil {
		log = logger.Noop()
	}
	log = log.With(logger.Component("session_cleanup"))
	cleaner, _ := store.(Cleaner)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if cleaner == nil {
				log.DebugContext(ctx, "heartbeat")
				continue
			}
			start := time.Now()
			n, err := cleaner.DeleteExpired(ctx)
			if err != nil {
				log.ErrorContext(ctx, "delete expired sessions", logger.Error(err))
				continue
			}
			log.InfoContext(ctx, "expired sessions removed",
				slog.Int64("removed", n),
				logger.Duration(time.Since(start)),
			)
		}
	}
}
