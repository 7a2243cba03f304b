package client

import (
	"errors"
	"fmt"
)

var (
	// ErrPredictionFailed covers every failure of a prediction call: the
	// backend was unreachable, rejected the request or answered garbage.
	ErrPredictionFailed = errors.New("backend unreachable or rejected the request")
	// ErrBackendUnavailable covers failures of the read-only endpoints.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// StatusError carries a non-2xx answer from the backend.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}
