// Package scoring holds the fraud classifier used by the prediction service.
//
// The classifier is a logistic regression over the 30 transaction features.
// Time and Amount are standardized with the scaler fitted at training time;
// the V1..V28 components are already PCA-normalized and are used as-is.
package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sync"

	"fraudlens/internal/logging"
	"fraudlens/internal/models"

	"go.uber.org/zap"
)

const (
	// DefaultThreshold is the fraud probability at or above which a
	// transaction is labeled fraudulent.
	DefaultThreshold = 0.5

	timeIndex   = 0
	amountIndex = models.FeatureCount - 1
)

// Score is the outcome of classifying one transaction.
type Score struct {
	Fraud bool
	// FraudProbability is p(fraud) as produced by the model.
	FraudProbability float64
	// Confidence is the probability of the predicted label.
	Confidence float64
	Message    string
}

// Classifier scores transaction feature vectors.
type Classifier interface {
	Predict(ctx context.Context, features models.TransactionFeatures) (Score, error)
	Info() models.ModelInfo
	Loaded() bool
}

// StandardScaler mirrors sklearn's StandardScaler for [time, amount].
type StandardScaler struct {
	Mean  [2]float64 `json:"mean"`
	Scale [2]float64 `json:"scale"`
}

func (s StandardScaler) transform(i int, v float64) float64 {
	if s.Scale[i] == 0 {
		return v - s.Mean[i]
	}
	return (v - s.Mean[i]) / s.Scale[i]
}

// modelFile is the on-disk representation written by the training pipeline.
type modelFile struct {
	Version   string          `json:"version"`
	Weights   []float64       `json:"weights"`
	Bias      float64         `json:"bias"`
	Threshold float64         `json:"threshold"`
	Scaler    *StandardScaler `json:"scaler"`
}

// LogisticModel is a trained logistic regression classifier.
type LogisticModel struct {
	mu        sync.RWMutex
	weights   []float64
	bias      float64
	threshold float64
	scaler    *StandardScaler
	version   string
	loaded    bool
}

// NewLogisticModel builds a model from explicit parameters.
func NewLogisticModel(weights []float64, bias, threshold float64, scaler *StandardScaler, version string) (*LogisticModel, error) {
	if len(weights) != models.FeatureCount {
		return nil, fmt.Errorf("%w: expected %d weights, got %d", ErrInvalidModel, models.FeatureCount, len(weights))
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	return &LogisticModel{
		weights:   w,
		bias:      bias,
		threshold: threshold,
		scaler:    scaler,
		version:   version,
		loaded:    true,
	}, nil
}

// LoadModel reads a model file. A missing file falls back to the built-in
// pretrained weights; an unreadable or malformed file is an error.
func LoadModel(path string, logger *zap.Logger) (*LogisticModel, error) {
	logger = logging.OrNop(logger)
	logger.Info("loading model", zap.String("path", path))

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("model file not found, using pretrained weights", zap.String("path", path))
		return Pretrained(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}

	m, err := NewLogisticModel(mf.Weights, mf.Bias, mf.Threshold, mf.Scaler, mf.Version)
	if err != nil {
		return nil, err
	}
	logger.Info("model loaded",
		zap.String("version", mf.Version),
		zap.Bool("scaler_loaded", mf.Scaler != nil))
	return m, nil
}

// Save writes the model in the format LoadModel reads.
func (m *LogisticModel) Save(path string) error {
	m.mu.RLock()
	mf := modelFile{
		Version:   m.version,
		Weights:   m.weights,
		Bias:      m.bias,
		Threshold: m.threshold,
		Scaler:    m.scaler,
	}
	m.mu.RUnlock()

	data, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// Predict classifies a single transaction.
func (m *LogisticModel) Predict(ctx context.Context, features models.TransactionFeatures) (Score, error) {
	if err := ctx.Err(); err != nil {
		return Score{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.loaded {
		return Score{}, ErrModelNotLoaded
	}

	x := features.Vector()
	if m.scaler != nil {
		x[timeIndex] = m.scaler.transform(0, x[timeIndex])
		x[amountIndex] = m.scaler.transform(1, x[amountIndex])
	}

	z := m.bias
	for i, w := range m.weights {
		z += w * x[i]
	}
	p := sigmoid(z)

	fraud := p >= m.threshold
	confidence := p
	if !fraud {
		confidence = 1 - p
	}

	return Score{
		Fraud:            fraud,
		FraudProbability: p,
		Confidence:       confidence,
		Message:          Message(fraud, p),
	}, nil
}

// Loaded reports whether the model can serve predictions.
func (m *LogisticModel) Loaded() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Info describes the model for /model/info and /health.
func (m *LogisticModel) Info() models.ModelInfo {
	info := models.ModelInfo{
		FeatureCount: models.FeatureCount,
		Features:     append([]string(nil), models.FeatureNames[:]...),
	}
	if m == nil {
		return info
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	info.ModelLoaded = m.loaded
	info.ScalerLoaded = m.scaler != nil
	info.Version = m.version
	return info
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// Message turns a label and the fraud probability into operator-facing text.
func Message(fraud bool, fraudProbability float64) string {
	if fraud {
		switch {
		case fraudProbability > 0.9:
			return "High risk transaction detected! Immediate attention required."
		case fraudProbability > 0.7:
			return "Suspicious transaction detected. Review recommended."
		default:
			return "Potential fraud detected. Please verify."
		}
	}
	switch {
	case fraudProbability < 0.1:
		return "Transaction appears safe."
	case fraudProbability < 0.3:
		return "Low risk transaction."
	default:
		return "Transaction within normal parameters."
	}
}
