package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sangkips/investify-pos/internal/application/pricing"
	"github.com/sangkips/investify-pos/internal/application/service"
	"github.com/sangkips/investify-pos/internal/config"
	domainRepo "github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/internal/infrastructure/backend"
	"github.com/sangkips/investify-pos/internal/infrastructure/codec"
	"github.com/sangkips/investify-pos/internal/infrastructure/database"
	"github.com/sangkips/investify-pos/internal/infrastructure/messaging"
	"github.com/sangkips/investify-pos/internal/infrastructure/repository"
	"github.com/sangkips/investify-pos/internal/presentation/http/handler"
	"github.com/sangkips/investify-pos/internal/presentation/http/routes"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := newLogger(cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshotCodec, err := codec.New(cfg.Store.Codec)
	if err != nil {
		logger.Fatal("invalid snapshot codec", zap.Error(err))
	}

	// Session store
	sessionRepo, idempotencyRepo, closeStore := openStore(cfg, snapshotCodec, logger)
	defer closeStore()

	// Backend client
	client, err := backend.NewClient(backend.Config{
		BaseURL:      cfg.Backend.URL,
		Timeout:      cfg.Backend.Timeout,
		ClientID:     cfg.Backend.ClientID,
		ClientSecret: cfg.Backend.ClientSecret,
		TokenURL:     cfg.Backend.TokenURL,
		RateLimit:    cfg.Backend.RateLimit,
	}, logger.Named("backend"))
	if err != nil {
		logger.Fatal("invalid backend configuration", zap.Error(err))
	}

	// Sale events
	var events domainRepo.SaleEventPublisher
	if cfg.AMQP.URL != "" {
		publisher := messaging.NewSalePublisher(cfg.AMQP.URL, cfg.AMQP.Queue, logger.Named("amqp"))
		defer publisher.Close()
		events = publisher
	} else {
		logger.Info("AMQP_URL not set, sale events are not published")
	}

	// Initialize services
	rate := pricing.NewRateCell(cfg.Pricing.InitialExchangeRate)
	catalogService := service.NewCatalogService(client, cfg.Session.CatalogTTL, logger.Named("catalog"))
	eligibilityService := service.NewEligibilityService(client, client, nil, logger.Named("eligibility"))
	sessionService := service.NewSessionService(ctx, sessionRepo, pricing.NewResolver(cfg.Pricing.Decimals), rate,
		eligibilityService, catalogService, client, service.SessionConfig{
			MaxTickets:     cfg.Session.MaxTickets,
			AllowZeroStock: cfg.Session.AllowZeroStock,
			LocationID:     cfg.Session.LocationID,
			PendingTTL:     cfg.Session.PendingTTL,
		}, logger.Named("session"))
	currencyService := service.NewCurrencyService(client, rate, logger.Named("currency"))
	checkoutService := service.NewCheckoutService(sessionService, client, events, logger.Named("checkout"))

	go currencyService.Run(ctx, cfg.Pricing.CurrencyRefreshPeriod)
	go purgeIdempotencyKeys(ctx, idempotencyRepo, logger)

	// Initialize handlers
	handlers := &routes.Handlers{
		Session:      handler.NewSessionHandler(sessionService),
		ExchangeRate: handler.NewExchangeRateHandler(sessionService, currencyService),
		Catalog:      handler.NewCatalogHandler(catalogService, cfg.Session.LocationID),
		Checkout:     handler.NewCheckoutHandler(checkoutService),
	}

	rateLimiter := routes.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		Logger:          logger,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8081"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("name", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore opens the configured session store. Idempotency keys live in
// Postgres when it is the store and in memory otherwise.
func openStore(cfg *config.Config, c codec.Codec, logger *zap.Logger) (domainRepo.SessionRepository, domainRepo.IdempotencyRepository, func()) {
	switch cfg.Store.Driver {
	case "redis":
		client, err := database.NewRedisClient(&cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		return repository.NewRedisSessionRepository(client, c, cfg.Store.Key),
			repository.NewMemoryIdempotencyRepository(),
			func() { _ = client.Close() }

	case "memory":
		logger.Warn("session store is in memory, open tickets are lost on restart")
		return repository.NewMemorySessionRepository(c), repository.NewMemoryIdempotencyRepository(), func() {}

	default:
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := database.AutoMigrate(db, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repository.NewSessionRepository(db, c, cfg.Store.Key), repository.NewIdempotencyRepository(db), closeDB
	}
}

func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				logger.Warn("failed to purge idempotency keys", zap.Error(err))
			}
		}
	}
}
