// Package prediction scores transactions and serves the prediction log.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fraudlens/internal/events"
	"fraudlens/internal/logging"
	"fraudlens/internal/metrics"
	"fraudlens/internal/models"
	"fraudlens/internal/repositories"
	"fraudlens/internal/scoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds optional service settings.
type Config struct {
	Version string
	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

type service struct {
	classifier scoring.Classifier
	repo       repositories.PredictionRepository
	cache      StatsCache
	publisher  events.Publisher
	metrics    metrics.Collector
	logger     *zap.Logger
	config     Config
}

// NewService creates a new prediction service. cache, publisher, collector
// and logger are optional.
func NewService(
	classifier scoring.Classifier,
	repo repositories.PredictionRepository,
	cache StatsCache,
	publisher events.Publisher,
	collector metrics.Collector,
	logger *zap.Logger,
	config Config,
) Service {
	if classifier == nil {
		panic("classifier is required")
	}
	if repo == nil {
		panic("repo is required")
	}

	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if collector == nil {
		collector = metrics.NoopCollector{}
	}
	logger = logging.OrNop(logger)
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.NewID == nil {
		config.NewID = NewTransactionID
	}

	return &service{
		classifier: classifier,
		repo:       repo,
		cache:      cache,
		publisher:  publisher,
		metrics:    collector,
		logger:     logger,
		config:     config,
	}
}

// NewTransactionID returns "txn_" followed by 16 random hex characters.
func NewTransactionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return transactionIDPrefix + hex[:16]
}

func (s *service) Predict(ctx context.Context, features models.TransactionFeatures, clientIP string) (*models.PredictionResult, error) {
	if !s.classifier.Loaded() {
		s.metrics.RecordError("predict", "model_not_loaded")
		return nil, ErrModelNotLoaded
	}

	result, err := s.score(ctx, features, clientIP)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	s.publish(ctx, events.NewPredictionEvent(result, features, clientIP))

	s.logger.Info("prediction",
		zap.String("transaction_id", result.TransactionID),
		zap.Bool("fraud", result.Fraud),
		zap.Float64("confidence", result.Confidence))
	return result, nil
}

func (s *service) PredictBatch(ctx context.Context, batch []models.TransactionFeatures, clientIP string) (*models.BatchPredictionResponse, error) {
	if !s.classifier.Loaded() {
		s.metrics.RecordError("predict_batch", "model_not_loaded")
		return nil, ErrModelNotLoaded
	}
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(batch) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	resp := &models.BatchPredictionResponse{
		Predictions: make([]models.PredictionResult, 0, len(batch)),
	}
	published := make([]events.PredictionEvent, 0, len(batch))
	for _, features := range batch {
		result, err := s.score(ctx, features, clientIP)
		if err != nil {
			return nil, err
		}
		if result.Fraud {
			resp.FraudCount++
		}
		resp.Predictions = append(resp.Predictions, *result)
		published = append(published, events.NewPredictionEvent(result, features, clientIP))
	}
	resp.TotalProcessed = len(resp.Predictions)
	resp.SafeCount = resp.TotalProcessed - resp.FraudCount

	s.metrics.RecordBatch(len(batch))
	s.invalidateStats(ctx)
	s.publish(ctx, published...)

	s.logger.Info("batch prediction",
		zap.Int("transactions", resp.TotalProcessed),
		zap.Int("fraud_detected", resp.FraudCount))
	return resp, nil
}

// score classifies one transaction and logs it. A storage failure is
// logged and does not fail the prediction.
func (s *service) score(ctx context.Context, features models.TransactionFeatures, clientIP string) (*models.PredictionResult, error) {
	start := time.Now()
	score, err := s.classifier.Predict(ctx, features)
	if err != nil {
		if errors.Is(err, scoring.ErrModelNotLoaded) {
			s.metrics.RecordError("predict", "model_not_loaded")
			return nil, ErrModelNotLoaded
		}
		s.metrics.RecordError("predict", "classifier")
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	s.metrics.RecordPrediction(score.Fraud, time.Since(start))

	now := s.config.Now().UTC()
	result := &models.PredictionResult{
		Fraud:         score.Fraud,
		Confidence:    score.Confidence,
		Message:       score.Message,
		TransactionID: s.config.NewID(),
		Timestamp:     now.Format(time.RFC3339Nano),
	}

	entry := &models.PredictionLog{
		TransactionID: result.TransactionID,
		InputFeatures: features.Map(),
		Prediction:    result.Fraud,
		Confidence:    result.Confidence,
		ClientIP:      clientIP,
		CreatedAt:     now,
	}
	if err := s.repo.LogPrediction(ctx, entry); err != nil {
		s.metrics.RecordError("log_prediction", "storage")
		s.logger.Error("failed to log prediction",
			zap.String("transaction_id", result.TransactionID), zap.Error(err))
	}

	return result, nil
}

// publish streams scored events; failures are logged only.
func (s *service) publish(ctx context.Context, batch ...events.PredictionEvent) {
	if err := s.publisher.Publish(ctx, batch...); err != nil {
		s.metrics.RecordError("publish", "stream")
		s.logger.Warn("failed to publish prediction events",
			zap.Int("events", len(batch)), zap.Error(err))
	}
}

func (s *service) invalidateStats(ctx context.Context) {
	if s.cache == nil || !s.repo.Connected() {
		return
	}
	if err := s.cache.InvalidateAggregate(ctx); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}

func (s *service) Stats(ctx context.Context) (*models.AggregateStats, error) {
	if s.cache != nil {
		cached, found, err := s.cache.GetAggregate(ctx)
		switch {
		case err != nil:
			s.logger.Warn("stats cache read failed", zap.Error(err))
		case found:
			return cached, nil
		}
	}

	// The generation is read before the aggregate so a prediction logged
	// during the query keeps the result out of the cache.
	cacheable := false
	var generation int64
	if s.cache != nil && s.repo.Connected() {
		gen, err := s.cache.AggregateGeneration(ctx)
		if err != nil {
			s.logger.Warn("stats cache generation read failed", zap.Error(err))
		} else {
			generation, cacheable = gen, true
		}
	}

	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		s.metrics.RecordError("stats", "storage")
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	if cacheable {
		stored, err := s.cache.SetAggregate(ctx, &stats, generation)
		switch {
		case err != nil:
			s.logger.Warn("stats cache write failed", zap.Error(err))
		case !stored:
			s.logger.Debug("stats changed during read, not cached")
		}
	}
	return &stats, nil
}

// ClampRecentLimit maps a limit outside [1, MaxRecentLimit] to the default.
func ClampRecentLimit(limit int) int {
	if limit < 1 || limit > MaxRecentLimit {
		return DefaultRecentLimit
	}
	return limit
}

func (s *service) Recent(ctx context.Context, limit int) ([]models.TransactionRecord, error) {
	logs, err := s.repo.GetRecent(ctx, ClampRecentLimit(limit))
	if err != nil {
		s.metrics.RecordError("recent", "storage")
		return nil, fmt.Errorf("failed to get recent predictions: %w", err)
	}

	records := make([]models.TransactionRecord, 0, len(logs))
	for _, l := range logs {
		records = append(records, l.ToRecord())
	}
	return records, nil
}

func (s *service) Health(ctx context.Context) models.HealthResponse {
	info := s.classifier.Info()

	status := StatusHealthy
	if !info.ModelLoaded {
		status = StatusDegraded
	}

	cacheConnected := false
	if s.cache != nil {
		cacheConnected = s.cache.HealthCheck(ctx) == nil
	}

	return models.HealthResponse{
		Status:            status,
		ModelLoaded:       info.ModelLoaded,
		ScalerLoaded:      info.ScalerLoaded,
		DatabaseConnected: s.repo.Connected(),
		CacheConnected:    cacheConnected,
		Version:           s.config.Version,
	}
}

func (s *service) ModelInfo() models.ModelInfo {
	return s.classifier.Info()
}
