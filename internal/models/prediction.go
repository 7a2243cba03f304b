package models

import (
	"strconv"
	"time"
)

// PredictionResult is the classifier's answer for one transaction.
// Confidence is the probability of the predicted label, not of fraud:
// Fraud=false with Confidence=0.95 reads "95% confident this is safe".
type PredictionResult struct {
	Fraud         bool    `json:"fraud"`
	Confidence    float64 `json:"confidence"`
	Message       string  `json:"message"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Timestamp     string  `json:"timestamp,omitempty"`
}

// AggregateStats summarizes every logged prediction.
type AggregateStats struct {
	TotalPredictions int64   `json:"total_predictions"`
	FraudCount       int64   `json:"fraud_count"`
	SafeCount        int64   `json:"safe_count"`
	FraudPercentage  float64 `json:"fraud_percentage"`
	AvgConfidence    float64 `json:"avg_confidence"`
}

// RecordFeatures is the subset of input features carried by history entries.
type RecordFeatures struct {
	Amount float64 `json:"amount"`
	Time   float64 `json:"time"`
}

// TransactionRecord is one entry of the prediction history.
// Synthetic marks entries generated client-side while the backend is unreachable.
type TransactionRecord struct {
	ID            string          `json:"_id"`
	TransactionID string          `json:"transaction_id"`
	Prediction    bool            `json:"prediction"`
	Confidence    float64         `json:"confidence"`
	Timestamp     string          `json:"timestamp"`
	InputFeatures *RecordFeatures `json:"input_features,omitempty"`
	ClientIP      string          `json:"client_ip,omitempty"`
	Synthetic     bool            `json:"synthetic,omitempty"`
}

// PredictionLog is the persisted form of a prediction.
type PredictionLog struct {
	ID            uint      `gorm:"primarykey"`
	TransactionID string    `gorm:"uniqueIndex;not null"`
	InputFeatures JSON      `gorm:"type:jsonb"`
	Prediction    bool      `gorm:"index;not null"`
	Confidence    float64   `gorm:"not null"`
	ClientIP      string    `gorm:"size:64"`
	CreatedAt     time.Time `gorm:"index:,sort:desc"`
}

// TableName keeps the collection name used by earlier deployments.
func (PredictionLog) TableName() string {
	return "prediction_logs"
}

// ToRecord converts a log row into its API representation.
func (p PredictionLog) ToRecord() TransactionRecord {
	rec := TransactionRecord{
		ID:            strconv.FormatUint(uint64(p.ID), 10),
		TransactionID: p.TransactionID,
		Prediction:    p.Prediction,
		Confidence:    p.Confidence,
		Timestamp:     p.CreatedAt.UTC().Format(time.RFC3339Nano),
		ClientIP:      p.ClientIP,
	}
	if p.InputFeatures != nil {
		rec.InputFeatures = &RecordFeatures{
			Amount: p.InputFeatures.Float("amount"),
			Time:   p.InputFeatures.Float("time"),
		}
	}
	return rec
}
