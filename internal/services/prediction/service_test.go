package prediction

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"fraudlens/internal/events"
	"fraudlens/internal/models"
	"fraudlens/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Predict(ctx context.Context, f models.TransactionFeatures) (scoring.Score, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(scoring.Score), args.Error(1)
}

func (m *MockClassifier) Info() models.ModelInfo {
	return m.Called().Get(0).(models.ModelInfo)
}

func (m *MockClassifier) Loaded() bool {
	return m.Called().Bool(0)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) LogPrediction(ctx context.Context, entry *models.PredictionLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockRepository) GetRecent(ctx context.Context, limit int) ([]models.PredictionLog, error) {
	args := m.Called(ctx, limit)
	logs, _ := args.Get(0).([]models.PredictionLog)
	return logs, args.Error(1)
}

func (m *MockRepository) GetStats(ctx context.Context) (models.AggregateStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.AggregateStats), args.Error(1)
}

func (m *MockRepository) Connected() bool {
	return m.Called().Bool(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetAggregate(ctx context.Context) (*models.AggregateStats, bool, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*models.AggregateStats)
	return stats, args.Bool(1), args.Error(2)
}

func (m *MockCache) AggregateGeneration(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) SetAggregate(ctx context.Context, stats *models.AggregateStats, generation int64) (bool, error) {
	args := m.Called(ctx, stats, generation)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) InvalidateAggregate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCache) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, batch ...events.PredictionEvent) error {
	return m.Called(ctx, batch).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordPrediction(fraud bool, d time.Duration) {
	m.Called(fraud, d)
}

func (m *MockMetrics) RecordBatch(size int) {
	m.Called(size)
}

func (m *MockMetrics) RecordError(op, kind string) {
	m.Called(op, kind)
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	n := 0
	return Config{
		Version: "1.0.0",
		Now:     func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("txn_%016d", n)
		},
	}
}

func fraudScore() scoring.Score {
	return scoring.Score{Fraud: true, FraudProbability: 0.95, Confidence: 0.95, Message: scoring.Message(true, 0.95)}
}

func safeScore() scoring.Score {
	return scoring.Score{Fraud: false, FraudProbability: 0.03, Confidence: 0.97, Message: scoring.Message(false, 0.03)}
}

func TestNewTransactionID(t *testing.T) {
	id := NewTransactionID()
	assert.Regexp(t, regexp.MustCompile(`^txn_[0-9a-f]{16}$`), id)
	assert.NotEqual(t, id, NewTransactionID())
}

func TestService_Predict(t *testing.T) {
	features := models.TransactionFeatures{Time: 100, Amount: 250}

	t.Run("successful prediction", func(t *testing.T) {
		clf := new(MockClassifier)
		repo := new(MockRepository)
		cache := new(MockCache)
		pub := new(MockPublisher)

		clf.On("Loaded").Return(true)
		clf.On("Predict", mock.Anything, features).Return(safeScore(), nil)
		repo.On("LogPrediction", mock.Anything, mock.MatchedBy(func(e *models.PredictionLog) bool {
			return e.TransactionID == "txn_0000000000000001" &&
				!e.Prediction &&
				e.ClientIP == "10.0.0.7" &&
				e.InputFeatures.Float("amount") == 250 &&
				e.CreatedAt.Equal(fixedNow)
		})).Return(nil)
		repo.On("Connected").Return(true)
		cache.On("InvalidateAggregate", mock.Anything).Return(nil)
		pub.On("Publish", mock.Anything, mock.MatchedBy(func(batch []events.PredictionEvent) bool {
			return len(batch) == 1 && batch[0].TransactionID == "txn_0000000000000001" && batch[0].Amount == 250
		})).Return(nil)

		svc := NewService(clf, repo, cache, pub, nil, zaptest.NewLogger(t), testConfig())
		result, err := svc.Predict(context.Background(), features, "10.0.0.7")

		require.NoError(t, err)
		assert.False(t, result.Fraud)
		assert.Equal(t, 0.97, result.Confidence)
		assert.Equal(t, "Transaction appears safe.", result.Message)
		assert.Equal(t, "txn_0000000000000001", result.TransactionID)
		assert.Equal(t, "2024-03-01T12:00:00Z", result.Timestamp)

		clf.AssertExpectations(t)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("model not loaded", func(t *testing.T) {
		clf := new(MockClassifier)
		repo := new(MockRepository)
		m := new(MockMetrics)

		clf.On("Loaded").Return(false)
		m.On("RecordError", "predict", "model_not_loaded").Return()

		svc := NewService(clf, repo, nil, nil, m, zaptest.NewLogger(t), testConfig())
		_, err := svc.Predict(context.Background(), features, "")

		assert.ErrorIs(t, err, ErrModelNotLoaded)
		repo.AssertNotCalled(t, "LogPrediction", mock.Anything, mock.Anything)
		m.AssertExpectations(t)
	})

	t.Run("classifier failure", func(t *testing.T) {
		clf := new(MockClassifier)
		repo := new(MockRepository)

		clf.On("Loaded").Return(true)
		clf.On("Predict", mock.Anything, features).Return(scoring.Score{}, context.Canceled)

		svc := NewService(clf, repo, nil, nil, nil, zaptest.NewLogger(t), testConfig())
		_, err := svc.Predict(context.Background(), features, "")

		assert.ErrorIs(t, err, ErrPredictionFailed)
		repo.AssertNotCalled(t, "LogPrediction", mock.Anything, mock.Anything)
	})

	t.Run("storage and stream failures do not fail the prediction", func(t *testing.T) {
		clf := new(MockClassifier)
		repo := new(MockRepository)
		pub := new(MockPublisher)
		m := new(MockMetrics)

		clf.On("Loaded").Return(true)
		clf.On("Predict", mock.Anything, features).Return(fraudScore(), nil)
		repo.On("LogPrediction", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
		repo.On("Connected").Return(true)
		pub.On("Publish", mock.Anything, mock.Anything).Return(events.ErrPublishFailed)
		m.On("RecordPrediction", true, mock.Anything).Return()
		m.On("RecordError", "log_prediction", "storage").Return()
		m.On("RecordError", "publish", "stream").Return()

		svc := NewService(clf, repo, nil, pub, m, zaptest.NewLogger(t), testConfig())
		result, err := svc.Predict(context.Background(), features, "")

		require.NoError(t, err)
		assert.True(t, result.Fraud)
		assert.Equal(t, "High risk transaction detected! Immediate attention required.", result.Message)
		m.AssertExpectations(t)
	})
}

func TestService_PredictBatch(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		wantErr   error
		wantFraud int
	}{
		{name: "empty batch", size: 0, wantErr: ErrEmptyBatch},
		{name: "too large", size: MaxBatchSize + 1, wantErr: ErrBatchTooLarge},
		{name: "single", size: 1, wantFraud: 1},
		{name: "maximum", size: MaxBatchSize, wantFraud: MaxBatchSize / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := new(MockClassifier)
			repo := new(MockRepository)
			clf.On("Loaded").Return(true)
			repo.On("Connected").Return(false).Maybe()
			repo.On("LogPrediction", mock.Anything, mock.Anything).Return(nil).Maybe()

			batch := make([]models.TransactionFeatures, tt.size)
			for i := range batch {
				batch[i] = models.TransactionFeatures{Time: float64(i)}
				score := safeScore()
				if i%2 == 0 {
					score = fraudScore()
				}
				clf.On("Predict", mock.Anything, batch[i]).Return(score, nil).Maybe()
			}

			svc := NewService(clf, repo, nil, nil, nil, zaptest.NewLogger(t), testConfig())
			resp, err := svc.PredictBatch(context.Background(), batch, "")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.size, resp.TotalProcessed)
			assert.Equal(t, tt.wantFraud, resp.FraudCount)
			assert.Equal(t, tt.size-tt.wantFraud, resp.SafeCount)
			assert.Len(t, resp.Predictions, tt.size)

			seen := make(map[string]bool, tt.size)
			for _, p := range resp.Predictions {
				seen[p.TransactionID] = true
			}
			assert.Len(t, seen, tt.size)
		})
	}
}

func TestService_PredictBatchPublishesOnce(t *testing.T) {
	clf := new(MockClassifier)
	repo := new(MockRepository)
	pub := new(MockPublisher)

	batch := []models.TransactionFeatures{{Amount: 1}, {Amount: 2}, {Amount: 3}}
	clf.On("Loaded").Return(true)
	clf.On("Predict", mock.Anything, mock.Anything).Return(safeScore(), nil)
	repo.On("LogPrediction", mock.Anything, mock.Anything).Return(nil)
	repo.On("Connected").Return(true)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(got []events.PredictionEvent) bool {
		return len(got) == 3 && got[0].Amount == 1 && got[2].TransactionID == "txn_0000000000000003"
	})).Return(nil).Once()

	svc := NewService(clf, repo, nil, pub, nil, zaptest.NewLogger(t), testConfig())
	_, err := svc.PredictBatch(context.Background(), batch, "10.0.0.1")

	require.NoError(t, err)
	pub.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestService_Stats(t *testing.T) {
	dbStats := models.AggregateStats{TotalPredictions: 4, FraudCount: 1, SafeCount: 3, FraudPercentage: 25, AvgConfidence: 0.9}

	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		cached := &models.AggregateStats{TotalPredictions: 99}
		cache.On("GetAggregate", mock.Anything).Return(cached, true, nil)

		svc := NewService(new(MockClassifier), repo, cache, nil, nil, zaptest.NewLogger(t), testConfig())
		got, err := svc.Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, cached, got)
		repo.AssertNotCalled(t, "GetStats", mock.Anything)
	})

	t.Run("cache miss populates cache", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		cache.On("GetAggregate", mock.Anything).Return(nil, false, nil)
		repo.On("GetStats", mock.Anything).Return(dbStats, nil)
		repo.On("Connected").Return(true)
		cache.On("AggregateGeneration", mock.Anything).Return(int64(3), nil)
		cache.On("SetAggregate", mock.Anything, &dbStats, int64(3)).Return(true, nil)

		svc := NewService(new(MockClassifier), repo, cache, nil, nil, zaptest.NewLogger(t), testConfig())
		got, err := svc.Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, dbStats, *got)
		cache.AssertExpectations(t)
	})

	t.Run("cache failure falls through", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		cache.On("GetAggregate", mock.Anything).Return(nil, false, errors.New("redis down"))
		cache.On("AggregateGeneration", mock.Anything).Return(int64(0), errors.New("redis down"))
		repo.On("GetStats", mock.Anything).Return(dbStats, nil)
		repo.On("Connected").Return(true)

		svc := NewService(new(MockClassifier), repo, cache, nil, nil, zaptest.NewLogger(t), testConfig())
		got, err := svc.Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(4), got.TotalPredictions)
		cache.AssertNotCalled(t, "SetAggregate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetStats", mock.Anything).Return(models.AggregateStats{}, errors.New("timeout"))

		svc := NewService(new(MockClassifier), repo, nil, nil, nil, zaptest.NewLogger(t), testConfig())
		_, err := svc.Stats(context.Background())

		assert.Error(t, err)
	})
}

func TestClampRecentLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 10}, {-3, 10}, {1, 1}, {50, 50}, {100, 100}, {101, 10}, {500, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampRecentLimit(tt.in), "limit %d", tt.in)
	}
}

func TestService_Recent(t *testing.T) {
	repo := new(MockRepository)
	logs := []models.PredictionLog{
		{ID: 2, TransactionID: "txn_b", Prediction: true, Confidence: 0.8, CreatedAt: fixedNow},
		{ID: 1, TransactionID: "txn_a", Confidence: 0.9, CreatedAt: fixedNow.Add(-time.Minute)},
	}
	repo.On("GetRecent", mock.Anything, 10).Return(logs, nil)

	svc := NewService(new(MockClassifier), repo, nil, nil, nil, zaptest.NewLogger(t), testConfig())
	records, err := svc.Recent(context.Background(), 500)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[0].ID)
	assert.Equal(t, "txn_b", records[0].TransactionID)
	assert.True(t, records[0].Prediction)
	repo.AssertExpectations(t)
}

func TestService_Health(t *testing.T) {
	tests := []struct {
		name       string
		loaded     bool
		connected  bool
		cacheErr   error
		wantStatus string
		wantCache  bool
	}{
		{name: "all up", loaded: true, connected: true, wantStatus: StatusHealthy, wantCache: true},
		{name: "mock mode", loaded: true, connected: false, cacheErr: errors.New("refused"), wantStatus: StatusHealthy},
		{name: "model missing", loaded: false, connected: true, wantStatus: StatusDegraded, wantCache: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := new(MockClassifier)
			repo := new(MockRepository)
			cache := new(MockCache)
			clf.On("Info").Return(models.ModelInfo{ModelLoaded: tt.loaded, ScalerLoaded: tt.loaded})
			repo.On("Connected").Return(tt.connected)
			cache.On("HealthCheck", mock.Anything).Return(tt.cacheErr)

			svc := NewService(clf, repo, cache, nil, nil, zaptest.NewLogger(t), testConfig())
			h := svc.Health(context.Background())

			assert.Equal(t, tt.wantStatus, h.Status)
			assert.Equal(t, tt.loaded, h.ModelLoaded)
			assert.Equal(t, tt.connected, h.DatabaseConnected)
			assert.Equal(t, tt.wantCache, h.CacheConnected)
			assert.Equal(t, "1.0.0", h.Version)
		})
	}
}

func TestService_WithPretrainedModel(t *testing.T) {
	repo := new(MockRepository)
	repo.On("LogPrediction", mock.Anything, mock.Anything).Return(nil)
	repo.On("Connected").Return(false)

	svc := NewService(scoring.Pretrained(), repo, nil, nil, nil, zaptest.NewLogger(t), Config{})
	result, err := svc.Predict(context.Background(), models.TransactionFeatures{Time: 406, Amount: 12.5}, "")

	require.NoError(t, err)
	assert.False(t, result.Fraud)
	assert.Greater(t, result.Confidence, 0.5)
	assert.Regexp(t, `^txn_[0-9a-f]{16}$`, result.TransactionID)
	assert.Equal(t, models.FeatureCount, svc.ModelInfo().FeatureCount)
}

func TestNewService_NilOptionalDependencies(t *testing.T) {
	repo := new(MockRepository)
	repo.On("LogPrediction", mock.Anything, mock.Anything).Return(nil)
	repo.On("Connected").Return(false)

	svc := NewService(scoring.Pretrained(), repo, nil, nil, nil, nil, Config{})

	_, err := svc.Predict(context.Background(), models.TransactionFeatures{Amount: 5}, "")
	require.NoError(t, err)
	resp, err := svc.PredictBatch(context.Background(), []models.TransactionFeatures{{Amount: 1}}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalProcessed)
}
