package prediction

import "errors"

// Service errors
var (
	ErrModelNotLoaded   = errors.New("model not loaded")
	ErrEmptyBatch       = errors.New("batch must contain at least one transaction")
	ErrBatchTooLarge    = errors.New("batch size exceeds maximum of 100 transactions")
	ErrPredictionFailed = errors.New("prediction failed")
)
