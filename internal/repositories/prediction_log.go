package repositories

import (
	"context"
	"fmt"

	"fraudlens/internal/logging"
	"fraudlens/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PredictionRepository stores and aggregates prediction logs.
type PredictionRepository interface {
	LogPrediction(ctx context.Context, entry *models.PredictionLog) error
	GetRecent(ctx context.Context, limit int) ([]models.PredictionLog, error)
	GetStats(ctx context.Context) (models.AggregateStats, error)
	Connected() bool
}

type predictionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPredictionRepository returns a gorm-backed repository. With a nil db the
// repository runs in mock mode: nothing is persisted, history is empty and
// stats are zero.
func NewPredictionRepository(db *gorm.DB, logger *zap.Logger) PredictionRepository {
	logger = logging.OrNop(logger)
	if db == nil {
		logger.Warn("database not connected, running in mock mode: predictions will not be persisted")
	}
	return &predictionRepository{db: db, logger: logger}
}

func (r *predictionRepository) Connected() bool {
	return r.db != nil
}

func (r *predictionRepository) LogPrediction(ctx context.Context, entry *models.PredictionLog) error {
	if r.db == nil {
		r.logger.Debug("database not connected, skipping log", zap.String("transaction_id", entry.TransactionID))
		return nil
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to log prediction %s: %w", entry.TransactionID, err)
	}
	return nil
}

func (r *predictionRepository) GetRecent(ctx context.Context, limit int) ([]models.PredictionLog, error) {
	if r.db == nil {
		return []models.PredictionLog{}, nil
	}

	var logs []models.PredictionLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch predictions: %w", err)
	}
	return logs, nil
}

func (r *predictionRepository) GetStats(ctx context.Context) (models.AggregateStats, error) {
	if r.db == nil {
		return models.AggregateStats{}, nil
	}

	var row struct {
		Total         int64
		FraudCount    int64
		AvgConfidence float64
	}
	err := r.db.WithContext(ctx).Model(&models.PredictionLog{}).
		Select("COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN prediction THEN 1 ELSE 0 END), 0) AS fraud_count, " +
			"COALESCE(AVG(confidence), 0) AS avg_confidence").
		Scan(&row).Error
	if err != nil {
		return models.AggregateStats{}, fmt.Errorf("failed to get stats: %w", err)
	}

	return BuildStats(row.Total, row.FraudCount, row.AvgConfidence), nil
}

// BuildStats derives the safe count and fraud percentage from raw counters.
func BuildStats(total, fraud int64, avgConfidence float64) models.AggregateStats {
	stats := models.AggregateStats{
		TotalPredictions: total,
		FraudCount:       fraud,
		SafeCount:        total - fraud,
		AvgConfidence:    avgConfidence,
	}
	if total > 0 {
		stats.FraudPercentage = float64(fraud) / float64(total) * 100
	}
	return stats
}
