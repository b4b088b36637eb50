package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/guardline/request-service/internal/api/http"
	"github.com/guardline/request-service/internal/api/http/handlers"
	"github.com/guardline/request-service/internal/auth"
	"github.com/guardline/request-service/internal/cache"
	"github.com/guardline/request-service/internal/config"
	"github.com/guardline/request-service/internal/domain"
	"github.com/guardline/request-service/internal/events"
	"github.com/guardline/request-service/internal/observability"
	"github.com/guardline/request-service/internal/persistence"
	"github.com/guardline/request-service/internal/repository"
	"github.com/guardline/request-service/internal/sequence"
	"github.com/guardline/request-service/internal/service"
	"github.com/guardline/request-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)

	ticketCache := cache.NewTicketCache(redis.Client, logger)

	dispatcher := events.NewInMemoryDispatcher()
	notificationWorker := worker.NewNotificationWorker(logger, cfg.Notification.QueueSize,
		&worker.EmailSender{From: cfg.Notification.EmailFrom, Logger: logger},
		&worker.WebhookSender{URL: cfg.Notification.WebhookURL, Logger: logger},
	)
	notificationWorker.Start()

	notificationService := service.NewNotificationService(dispatcher, notificationWorker, logger)
	notificationService.RegisterHandlers()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo})
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo: requestRepo,
		UserRepo:    userRepo,
		Allocator:   sequence.NewAllocator(requestRepo),
		Dispatcher:  dispatcher,
		TicketCache: ticketCache,
	})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(pg, redis),
		Users:           handlers.NewUsersHandler(authService),
		Tickets:         handlers.NewRequestsHandler(requestService, domain.KindTicket),
		ServiceRequests: handlers.NewRequestsHandler(requestService, domain.KindServiceRequest),
		AuthMiddleware:  authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	notificationWorker.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
