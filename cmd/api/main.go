package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/wavemax/affiliate-program/internal/api/http"
	"github.com/wavemax/affiliate-program/internal/api/http/handlers"
	"github.com/wavemax/affiliate-program/internal/auth"
	"github.com/wavemax/affiliate-program/internal/config"
	"github.com/wavemax/affiliate-program/internal/events"
	"github.com/wavemax/affiliate-program/internal/observability"
	"github.com/wavemax/affiliate-program/internal/persistence"
	"github.com/wavemax/affiliate-program/internal/quota"
	"github.com/wavemax/affiliate-program/internal/repository"
	"github.com/wavemax/affiliate-program/internal/service"
	"github.com/wavemax/affiliate-program/internal/worker"
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
	affiliateRepo := repository.NewAffiliateRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	adminRepo := repository.NewAdministratorRepository(pool)
	operatorRepo := repository.NewOperatorRepository(pool)
	revokedRepo := repository.NewRevokedTokenRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	securityEvents := service.NewSecurityEventService(dispatcher, logger)
	securityEvents.RegisterHandlers()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AffiliateRepo:    affiliateRepo,
		CustomerRepo:     customerRepo,
		AdminRepo:        adminRepo,
		OperatorRepo:     operatorRepo,
		RevokedTokenRepo: revokedRepo,
		Dispatcher:       dispatcher,
	})

	metrics := observability.NewMetrics()
	authMiddleware := auth.NewMiddleware(authService.TokenManager(), revokedRepo, logger, metrics)
	authorizer := auth.NewAuthorizer(adminRepo, operatorRepo, dispatcher, logger)
	limiter := quota.NewLimiter(ctx, redis.Client, cfg.Quota, cfg.App.IsTest(), dispatcher, logger, metrics)

	worker.StartPurgeWorker(ctx, revokedRepo,
		cfg.Auth.RevocationRetention(),
		cfg.Auth.PurgeInterval(),
		logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(),
		Auth:           handlers.NewAuthHandler(authService),
		Affiliates:     handlers.NewAffiliateHandler(affiliateRepo, customerRepo),
		Customers:      handlers.NewCustomerHandler(customerRepo, orderRepo),
		Orders:         handlers.NewOrderHandler(orderRepo),
		Operators:      handlers.NewOperatorHandler(orderRepo),
		Admin:          handlers.NewAdminHandler(operatorRepo, cfg.Auth),
		AuthMiddleware: authMiddleware,
		Authorizer:     authorizer,
		Limiter:        limiter,
		TokenManager:   authService.TokenManager(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
