package models

// BatchPredictionInput is the body of POST /predict/batch.
type BatchPredictionInput struct {
	Transactions []TransactionFeatures `json:"transactions" validate:"required,min=1,max=100,dive"`
}

// BatchPredictionResponse summarizes a batch of predictions.
type BatchPredictionResponse struct {
	Predictions    []PredictionResult `json:"predictions"`
	TotalProcessed int                `json:"total_processed"`
	FraudCount     int                `json:"fraud_count"`
	SafeCount      int                `json:"safe_count"`
}

// HealthResponse reports the state of the API and its dependencies.
type HealthResponse struct {
	Status            string `json:"status"`
	ModelLoaded       bool   `json:"model_loaded"`
	ScalerLoaded      bool   `json:"scaler_loaded"`
	DatabaseConnected bool   `json:"database_connected"`
	CacheConnected    bool   `json:"cache_connected"`
	Version           string `json:"version"`
}

// ModelInfo describes the loaded classifier.
type ModelInfo struct {
	ModelLoaded  bool     `json:"model_loaded"`
	ScalerLoaded bool     `json:"scaler_loaded"`
	FeatureCount int      `json:"feature_count"`
	Features     []string `json:"features"`
	Version      string   `json:"version"`
}
