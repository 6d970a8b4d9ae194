package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/service-portal/internal/api/http"
	"github.com/spec-kit/service-portal/internal/api/http/handlers"
	"github.com/spec-kit/service-portal/internal/auth"
	"github.com/spec-kit/service-portal/internal/config"
	"github.com/spec-kit/service-portal/internal/events"
	"github.com/spec-kit/service-portal/internal/observability"
	"github.com/spec-kit/service-portal/internal/persistence"
	"github.com/spec-kit/service-portal/internal/repository"
	"github.com/spec-kit/service-portal/internal/service"
	"github.com/spec-kit/service-portal/internal/session"
	"github.com/spec-kit/service-portal/internal/view"
	"github.com/spec-kit/service-portal/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var (
		userRepo    repository.UserRepository
		requestRepo repository.RequestRepository
	)
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		requestRepo = repository.NewRequestRepository(pg.PoolHandle())
	} else {
		store := repository.NewMemoryStore()
		userRepo = store.Users()
		requestRepo = store.Requests()
	}

	sessionStore, redisConn := newSessionStore(ctx, cfg, logger)
	if redisConn != nil {
		defer redisConn.Close()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notifications, metrics)

	accountService := service.NewAccountService(cfg.Auth, service.AccountDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo: requestRepo,
		Dispatcher:  dispatcher,
	})

	if cfg.Admin.UsesDefaults() && !cfg.App.IsDevelopment() {
		logger.Warn("admin account uses default credentials; set ADMIN_EMAIL and ADMIN_PASSWORD")
	}
	admin, created, err := accountService.EnsureAdmin(ctx, cfg.Admin)
	if err != nil {
		logger.Fatal("failed to ensure admin account", zap.Error(err))
	}
	if created {
		logger.Info("admin account created", zap.String("email", admin.Email))
	}

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		Views:     view.New(),
		Immutable: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisConn),
		Auth:           handlers.NewAuthHandler(accountService),
		Customer:       handlers.NewCustomerHandler(accountService, requestService),
		Admin:          handlers.NewAdminHandler(accountService, requestService),
		AuthMiddleware: auth.NewAuthMiddleware(userRepo),
		Sessions:       session.NewManager(sessionStore, cfg.Session, logger),
		LoginThrottle:  auth.NewLoginThrottle(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// newSessionStore prefers Redis and falls back to process memory when it is disabled
// or unreachable. The returned connection is nil in the memory case.
func newSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Store, *persistence.Redis) {
	if cfg.Session.Store == "memory" {
		logger.Info("using in-memory session store")
		return session.NewMemoryStore(), nil
	}
	conn := persistence.NewRedis(ctx, cfg.Redis, logger)
	if !conn.Reachable {
		logger.Warn("redis unreachable; sessions fall back to memory")
		conn.Close()
		return session.NewMemoryStore(), nil
	}
	return session.NewRedisStore(conn.Client), conn
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
