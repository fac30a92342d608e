package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/taskboard-console/internal/api/http"
	"github.com/spec-kit/taskboard-console/internal/api/http/handlers"
	"github.com/spec-kit/taskboard-console/internal/client"
	"github.com/spec-kit/taskboard-console/internal/config"
	"github.com/spec-kit/taskboard-console/internal/credentials"
	"github.com/spec-kit/taskboard-console/internal/events"
	"github.com/spec-kit/taskboard-console/internal/guard"
	"github.com/spec-kit/taskboard-console/internal/observability"
	"github.com/spec-kit/taskboard-console/internal/persistence"
	"github.com/spec-kit/taskboard-console/internal/session"
	"github.com/spec-kit/taskboard-console/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, deps, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init credential store", zap.String("store", cfg.Session.Store), zap.Error(err))
	}
	defer closeStore()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(events.WithErrorHandler(func(evt events.Event, err error) {
		logger.Warn("event handler failed", zap.String("type", string(evt.Type)), zap.Error(err))
	}))

	audit := worker.NewSessionAuditWorker(dispatcher, logger)
	audit.Start()
	defer audit.Stop()

	var manager *session.Manager
	rest := client.New(cfg.Backend,
		client.WithLogger(logger),
		client.WithTokenSource(client.TokenFunc(func() string { return manager.Token() })),
		client.WithUnauthorizedHandler(func(ctx context.Context) { manager.Invalidate(ctx, "unauthorized") }),
	)
	manager = session.NewManager(store,
		session.WithLogger(logger.Named("session")),
		session.WithDispatcher(dispatcher),
		session.WithMetrics(metrics),
		session.WithAuthenticator(rest),
		session.WithRevalidateInterval(cfg.Session.RevalidateInterval()),
		session.WithDefaultTTL(cfg.Session.DefaultTTL()),
		session.WithLoginPath(guard.LoginPath),
	)

	watcher := guard.NewWatcher(manager)
	defer watcher.Close()

	manager.Init(ctx)
	defer manager.Dispose()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Session: handlers.NewSessionHandler(manager, logger),
		Board:   handlers.NewBoardHandler(rest, logger),
		Metrics: handlers.NewMetricsHandler(metrics),
		Guards:  guard.NewMiddleware(watcher, logger),
	})

	go func() {
		logger.Info("console listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Session.Store))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// buildStore opens the configured credential backend. The returned deps are
// checked by the readiness probe.
func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (credentials.Store, map[string]handlers.Pinger, func(), error) {
	switch cfg.Session.Store {
	case config.StoreRedis:
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		store := credentials.NewRedisStore(rdb.Client, cfg.Session.Namespace)
		return store, map[string]handlers.Pinger{"redis": rdb}, rdb.Close, nil

	case config.StorePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, nil, nil, err
			}
		}
		store := credentials.NewPostgresStore(pg.Pool, cfg.Session.Namespace)
		return store, map[string]handlers.Pinger{"postgres": pg}, pg.Close, nil

	case config.StoreCookie:
		store, err := credentials.NewCookieStore(cfg.Session.Origin)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, func() {}, nil
	}
	return nil, nil, nil, fmt.Errorf("unsupported session store %q", cfg.Session.Store)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
