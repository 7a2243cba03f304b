package prediction

import (
	"context"

	"fraudlens/internal/models"
)

// Service defines the backend prediction operations.
type Service interface {
	Predict(ctx context.Context, features models.TransactionFeatures, clientIP string) (*models.PredictionResult, error)
	PredictBatch(ctx context.Context, batch []models.TransactionFeatures, clientIP string) (*models.BatchPredictionResponse, error)
	Stats(ctx context.Context) (*models.AggregateStats, error)
	Recent(ctx context.Context, limit int) ([]models.TransactionRecord, error)
	Health(ctx context.Context) models.HealthResponse
	ModelInfo() models.ModelInfo
}

// StatsCache is the subset of the Redis cache service used for aggregates.
// SetAggregate stores stats only if no invalidation happened since
// AggregateGeneration returned generation.
type StatsCache interface {
	GetAggregate(ctx context.Context) (*models.AggregateStats, bool, error)
	AggregateGeneration(ctx context.Context) (int64, error)
	SetAggregate(ctx context.Context, stats *models.AggregateStats, generation int64) (bool, error)
	InvalidateAggregate(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}
