// Package stats keeps the dashboard's copy of the aggregate counters.
package stats

import (
	"context"
	"sync"

	"fraudlens/internal/logging"
	"fraudlens/internal/models"

	"go.uber.org/zap"
)

// Fetcher loads the aggregate counters from the backend.
type Fetcher interface {
	Stats(ctx context.Context) (*models.AggregateStats, error)
}

// Aggregator refreshes stats wholesale. Failures keep the previous values;
// stats are advisory and errors are only logged.
type Aggregator struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu      sync.RWMutex
	current models.AggregateStats
	loaded  bool
}

func NewAggregator(fetcher Fetcher, logger *zap.Logger) *Aggregator {
	return &Aggregator{fetcher: fetcher, logger: logging.OrNop(logger)}
}

// Refresh replaces the current stats with a fresh fetch.
func (a *Aggregator) Refresh(ctx context.Context) {
	s, err := a.fetcher.Stats(ctx)
	if err != nil {
		a.logger.Warn("failed to fetch stats, keeping previous values", zap.Error(err))
		return
	}
	if s == nil || ctx.Err() != nil {
		return
	}

	a.mu.Lock()
	a.current = *s
	a.loaded = true
	a.mu.Unlock()

	a.logger.Debug("stats refreshed",
		zap.Int64("total_predictions", s.TotalPredictions),
		zap.Int64("fraud_count", s.FraudCount))
}

// Current returns a copy of the latest stats (zero before the first
// successful refresh).
func (a *Aggregator) Current() models.AggregateStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Loaded reports whether any refresh has succeeded.
func (a *Aggregator) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded
}
