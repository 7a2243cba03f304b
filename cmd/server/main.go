// Package main is the entry point of the fraud scoring API.
// It loads configuration, the classifier and the storage backends, then
// serves HTTP until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fraudlens/internal/config"
	"fraudlens/internal/events"
	"fraudlens/internal/handlers"
	"fraudlens/internal/logging"
	"fraudlens/internal/metrics"
	"fraudlens/internal/repositories"
	"fraudlens/internal/repositories/cache"
	"fraudlens/internal/routes"
	"fraudlens/internal/scoring"
	"fraudlens/internal/services/prediction"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	apiVersion      = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	model, err := scoring.LoadModel(cfg.ModelPath, logger)
	if err != nil {
		// An unloaded model keeps the API up and answers 503 on /predict.
		logger.Error("failed to load model", zap.String("path", cfg.ModelPath), zap.Error(err))
		model = &scoring.LogisticModel{}
	}

	db, err := repositories.InitDB(cfg, logger)
	if err != nil {
		logger.Warn("database unavailable, running in mock mode", zap.Error(err))
		db = nil
	}
	defer func() {
		if err := repositories.CloseDB(db); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()
	repo := repositories.NewPredictionRepository(db, logger)

	collector := metrics.NewPrometheusCollector()

	statsCache := connectCache(ctx, cfg, logger)
	var svcCache prediction.StatsCache
	if statsCache != nil {
		svcCache = statsCache
		collector.RegisterCachePool(statsCache.PoolStats)
		defer statsCache.Close()
	}

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	svc := prediction.NewService(model, repo, svcCache, publisher, collector, logger,
		prediction.Config{Version: apiVersion})

	app := fiber.New(fiber.Config{
		AppName:               "fraudlens",
		DisableStartupMessage: cfg.IsProduction(),
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	routes.SetupRoutes(app, cfg, handlers.NewPredictionHandler(svc, logger, apiVersion), collector)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// connectCache returns nil when Redis cannot be reached; stats are then
// served straight from the database.
func connectCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) *cache.CacheService {
	client := cache.NewRedisClient(&cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	svc := cache.NewCacheService(client, cfg.StatsCacheTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := svc.HealthCheck(pingCtx); err != nil {
		logger.Warn("redis unavailable, stats cache disabled", zap.String("addr", cfg.RedisAddr()), zap.Error(err))
		_ = svc.Close()
		return nil
	}
	logger.Info("redis connected", zap.String("addr", cfg.RedisAddr()))
	return svc
}

func newPublisher(cfg *config.Config, logger *zap.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("no kafka brokers configured, prediction events disabled")
		return events.NoopPublisher{}
	}
	p, err := events.NewKafkaPublisher(events.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
	if err != nil {
		logger.Warn("kafka publisher disabled", zap.Error(err))
		return events.NoopPublisher{}
	}
	logger.Info("publishing prediction events",
		zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	return p
}
