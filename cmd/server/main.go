package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/twilight/modules/account"
	"github.com/dmitrymomot/twilight/pkg/auth"
	"github.com/dmitrymomot/twilight/pkg/clientip"
	"github.com/dmitrymomot/twilight/pkg/config"
	"github.com/dmitrymomot/twilight/pkg/httpserver"
	"github.com/dmitrymomot/twilight/pkg/logger"
	"github.com/dmitrymomot/twilight/pkg/pg"
	"github.com/dmitrymomot/twilight/pkg/ratelimiter"
	"github.com/dmitrymomot/twilight/pkg/realtime"
	"github.com/dmitrymomot/twilight/pkg/redis"
	"github.com/dmitrymomot/twilight/pkg/requestid"
	"github.com/dmitrymomot/twilight/pkg/session"
	"github.com/dmitrymomot/twilight/pkg/user"
)

func main() {
	startedAt := time.Now()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad[Config]()

	log := logger.New(
		logger.WithEnvironment(cfg.AppEnv, cfg.AppName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor(), auth.LoggerExtractor()),
	)

	db, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		log.Error("failed to connect to database", logger.Component("database"), logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	if err := pg.Migrate(ctx, db, cfg.DB, log.With(logger.Component("database.migration"))); err != nil {
		log.Error("failed to migrate database", logger.Component("database.migration"), logger.Error(err))
		os.Exit(1)
	}

	checks := []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(db)}}

	var rdb *goredis.Client
	if cfg.Session.Storage == session.BackendRedis {
		rdb, err = redis.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis", logger.Component("redis"), logger.Error(err))
			os.Exit(1)
		}
		defer rdb.Close()
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)})
	}

	users := user.NewPostgresRepository(db)
	deps := session.Dependencies{Users: users, DB: db, Logger: log}
	if rdb != nil {
		deps.Redis = rdb
	}
	store, err := session.NewStore(cfg.Session, deps)
	if err != nil {
		log.Error("failed to build session store", logger.Component("session"), logger.Error(err))
		os.Exit(1)
	}

	sessions := session.NewManager(store, cfg.Session, session.WithManagerLogger(log))
	resolver := auth.NewResolver(store, users, cfg.Session, auth.WithResolverLogger(log))
	passwords := auth.NewPasswordService(users, auth.WithPasswordLogger(log))
	hub := realtime.NewManager(cfg.Realtime, realtime.WithLogger(log))

	var limits ratelimiter.Store
	if rdb != nil {
		limits = ratelimiter.NewRedisStore(rdb, ratelimiter.WithRedisTimeout(cfg.Session.StoreTimeout))
	} else {
		mem := ratelimiter.NewMemoryStore()
		defer mem.Close()
		limits = mem
	}
	limiter, err := ratelimiter.NewBucket(limits, cfg.Auth)
	if err != nil {
		log.Error("failed to build rate limiter", logger.Component("ratelimiter"), logger.Error(err))
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware(),
		clientip.Middleware(
			clientip.WithTrustedHeaders(cfg.TrustedIPHeaders...),
			clientip.WithTrustedProxies(cfg.TrustedProxies...),
		),
		httpserver.AccessLog(log),
		middleware.Recoverer,
	)
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, cfg.Session.StoreTimeout, checks...))
	instance := cfg.InstanceID
	if instance == "" {
		instance, _ = os.Hostname()
	}
	r.Get("/meta/info", httpserver.InfoHandler(startedAt, instance))
	r.Mount("/", account.Router(account.RouterOptions{
		Resolver:    resolver,
		Sessions:    sessions,
		Passwords:   passwords,
		Realtime:    hub,
		FlashAdmins: cfg.FlashAdmins,
		Limiter:     limiter,
		Logger:      log,
	}))

	srv := httpserver.NewFromConfig(cfg.Server,
		httpserver.WithLogger(log),
		httpserver.WithOnShutdown(func() { hub.CloseAll() }),
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return srv.Run(ctx, r) })
	eg.Go(func() error { return hub.Run(ctx) })
	eg.Go(func() error { return session.Cleanup(ctx, store, cfg.Session.CleanupInterval, log) })

	if err := eg.Wait(); err != nil {
		log.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("application stopped")
}
