// Package metrics records prediction throughput, latency and failures.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const namespace = "fraudlens"

// Collector defines the interface for collecting prediction metrics
type Collector interface {
	RecordPrediction(fraud bool, duration time.Duration)
	RecordBatch(size int)
	RecordError(operation, kind string)
}

// PrometheusCollector implements Collector on its own registry so tests
// and multiple app instances never collide on the default one.
type PrometheusCollector struct {
	registry *prometheus.Registry

	predictions        *prometheus.CounterVec
	predictionDuration prometheus.Histogram
	batchSize          prometheus.Histogram
	errors             *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

func NewPrometheusCollector() *PrometheusCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusCollector{
		registry: reg,
		predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "Total number of scored transactions",
			},
			[]string{"result"},
		),
		predictionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "prediction_duration_seconds",
				Help:      "Time spent scoring a single transaction",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
			},
		),
		batchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_size",
				Help:      "Number of transactions per batch request",
				Buckets:   []float64{1, 5, 10, 25, 50, 100},
			},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of failed operations",
			},
			[]string{"operation", "kind"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"method", "route"},
		),
	}
}

func (c *PrometheusCollector) RecordPrediction(fraud bool, duration time.Duration) {
	c.predictions.WithLabelValues(resultLabel(fraud)).Inc()
	c.predictionDuration.Observe(duration.Seconds())
}

func (c *PrometheusCollector) RecordBatch(size int) {
	c.batchSize.Observe(float64(size))
}

func (c *PrometheusCollector) RecordError(operation, kind string) {
	c.errors.WithLabelValues(operation, kind).Inc()
}

// ObserveHTTP records one served request.
func (c *PrometheusCollector) ObserveHTTP(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RegisterCachePool exports the stats cache connection pool counters,
// read from stats at scrape time.
func (c *PrometheusCollector) RegisterCachePool(stats func() *redis.PoolStats) {
	factory := promauto.With(c.registry)
	counter := func(name, help string, value func(*redis.PoolStats) uint32) {
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(value(stats())) })
	}
	gauge := func(name, help string, value func(*redis.PoolStats) uint32) {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(value(stats())) })
	}

	counter("hits_total", "Free connections found in the pool", func(p *redis.PoolStats) uint32 { return p.Hits })
	counter("misses_total", "Connections that had to be dialed", func(p *redis.PoolStats) uint32 { return p.Misses })
	counter("timeouts_total", "Waits for a free connection that timed out", func(p *redis.PoolStats) uint32 { return p.Timeouts })
	gauge("total_conns", "Connections in the pool", func(p *redis.PoolStats) uint32 { return p.TotalConns })
	gauge("idle_conns", "Idle connections in the pool", func(p *redis.PoolStats) uint32 { return p.IdleConns })
	gauge("stale_conns", "Stale connections removed from the pool", func(p *redis.PoolStats) uint32 { return p.StaleConns })
}

// Registry exposes the underlying registry.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the exposition format for this collector's registry.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func resultLabel(fraud bool) string {
	if fraud {
		return "fraud"
	}
	return "safe"
}

// NoopCollector is a no-op implementation of Collector
type NoopCollector struct{}

func (NoopCollector) RecordPrediction(bool, time.Duration) {}
func (NoopCollector) RecordBatch(int)                      {}
func (NoopCollector) RecordError(string, string)           {}
