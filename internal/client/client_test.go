package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fraudlens/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithLogger(zaptest.NewLogger(t))), &calls
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Predict(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/predict", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]float64
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Len(t, body, models.FeatureCount)
			assert.Equal(t, 129.5, body["amount"])

			writeJSON(w, http.StatusOK, models.PredictionResult{
				Fraud:         false,
				Confidence:    0.97,
				Message:       "Transaction appears safe.",
				TransactionID: "abc123",
			})
		})

		result, err := c.Predict(context.Background(), models.TransactionFeatures{Amount: 129.5})
		require.NoError(t, err)
		assert.False(t, result.Fraud)
		assert.Equal(t, 0.97, result.Confidence)
		assert.Equal(t, "abc123", result.TransactionID)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("server error is not retried", func(t *testing.T) {
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Prediction failed"})
		})

		result, err := c.Predict(context.Background(), models.TransactionFeatures{})
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrPredictionFailed)
		assert.Contains(t, err.Error(), "status 500: Prediction failed")
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("undecodable body", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>gateway</html>"))
		})

		_, err := c.Predict(context.Background(), models.TransactionFeatures{})
		assert.ErrorIs(t, err, ErrPredictionFailed)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := New(url).Predict(context.Background(), models.TransactionFeatures{})
		assert.ErrorIs(t, err, ErrPredictionFailed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		release := make(chan struct{})
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			<-release
		})
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := c.Predict(ctx, models.TransactionFeatures{})
		assert.ErrorIs(t, err, ErrPredictionFailed)
	})
}

func TestClient_Stats(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data": models.AggregateStats{
				TotalPredictions: 20,
				FraudCount:       5,
				SafeCount:        15,
				FraudPercentage:  25,
			},
			"timestamp": "2024-03-01T12:00:00Z",
		})
	})

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(20), stats.TotalPredictions)
	assert.Equal(t, 25.0, stats.FraudPercentage)
}

func TestClient_Recent(t *testing.T) {
	t.Run("passes limit and unwraps data", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/recent", r.URL.Path)
			assert.Equal(t, "50", r.URL.Query().Get("limit"))
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status": "success",
				"count":  2,
				"data": []models.TransactionRecord{
					{ID: "2", TransactionID: "txn_b", Prediction: true, Confidence: 0.91},
					{ID: "1", TransactionID: "txn_a", Confidence: 0.88},
				},
			})
		})

		records, err := c.Recent(context.Background(), 50)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "txn_b", records[0].TransactionID)
		assert.True(t, records[0].Prediction)
	})

	t.Run("failure", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.Recent(context.Background(), 50)
		assert.ErrorIs(t, err, ErrBackendUnavailable)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
		assert.Contains(t, err.Error(), "unexpected status 502")
	})
}

func TestNew_TrimsBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8000", New("http://localhost:8000/").BaseURL())
}
