package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/events"
	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/internal/repository/postgres"
	redisrepo "github.com/jafarshop/storefront/internal/repository/redis"
	"github.com/jafarshop/storefront/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return err
	}

	repos := postgres.NewRepositories(db, logger)
	m := metrics.New()

	if cfg.Redis.Enabled() {
		client := redisrepo.NewClient(cfg.Redis)
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			// Both stores degrade to the database or to no replay protection while Redis is down
			logger.Warn("Redis unreachable at startup", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()

		repos.Settings = redisrepo.NewCachedSettingsRepository(repos.Settings, client, cfg.Redis.SettingsCacheTTL, logger)
		repos.IdempotencyKey = redisrepo.NewIdempotencyKeyRepository(client, cfg.Redis.IdempotencyTTL, logger)
	} else {
		logger.Info("Redis not configured, settings cache and idempotency keys disabled")
	}

	handlers := []events.Handler{events.NewAnalyticsRecorder(repos.User)}
	if cfg.Kafka.Enabled() {
		publisher := events.NewKafkaPublisher(cfg.Kafka, logger)
		defer publisher.Close()
		handlers = append(handlers, publisher)
	} else {
		logger.Info("Kafka not configured, order events will not be published")
	}
	dispatcher := events.NewDispatcher(logger, 10*time.Second, handlers...)

	settings := service.NewSettingsService(repos.Settings, cfg.Pricing.DefaultShipping, m, logger)
	orders := service.NewOrderService(service.OrderServiceDeps{
		Orders:   repos.Order,
		Settings: settings,
		GST:      cfg.Pricing.GST,
		Events:   dispatcher,
		Metrics:  m,
		Logger:   logger,
	})
	quotes := service.NewQuoteService(settings, cfg.Pricing.GST)

	router := api.NewRouter(cfg, api.Dependencies{
		Users:           repos.User,
		Orders:          orders,
		Settings:        settings,
		Quotes:          quotes,
		IdempotencyKeys: repos.IdempotencyKey,
	}, m, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case sig := <-quit:
		logger.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Let post-commit handlers finish before their stores close
	dispatcher.Close()
	logger.Info("Server exited")
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = level

	return zapCfg.Build()
}
