// Package routes defines the API routing configuration.
// It wires middleware, the prediction handlers and the metrics endpoint.
package routes

import (
	"time"

	"fraudlens/internal/config"
	"fraudlens/internal/handlers"
	"fraudlens/internal/metrics"
	"fraudlens/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes configures all application routes.
// collector may be nil, in which case /metrics is not mounted.
func SetupRoutes(app *fiber.App, cfg *config.Config, h *handlers.PredictionHandler, collector *metrics.PrometheusCollector) {
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,HEAD,OPTIONS",
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	if collector != nil {
		app.Use(middleware.RequestMetrics(collector))
		app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
	}

	app.Get("/", h.Root)
	app.Get("/health", h.Health)

	app.Use("/predict", middleware.RateLimit(cfg.PredictRateLimit, time.Minute))
	app.Post("/predict", h.Predict)
	app.Post("/predict/batch", h.PredictBatch)

	app.Get("/stats", h.Stats)
	app.Get("/recent", h.Recent)
	app.Get("/model/info", h.ModelInfo)
}
