// Package client talks to the fraud scoring API. The backend origin is
// injected once at construction; every call is bounded only by the
// caller's context.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fraudlens/internal/logging"
	"fraudlens/internal/models"

	"go.uber.org/zap"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrNop(l)
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logging.OrNop(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend origin this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Predict submits one feature record. It makes exactly one request.
func (c *Client) Predict(ctx context.Context, features models.TransactionFeatures) (*models.PredictionResult, error) {
	var result models.PredictionResult
	if err := c.do(ctx, http.MethodPost, "/predict", features, &result); err != nil {
		c.logger.Warn("prediction request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}
	return &result, nil
}

type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

// Stats fetches the aggregate counters.
func (c *Client) Stats(ctx context.Context) (*models.AggregateStats, error) {
	var env envelope[models.AggregateStats]
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	return &env.Data, nil
}

// Recent fetches up to limit history records, newest first.
func (c *Client) Recent(ctx context.Context, limit int) ([]models.TransactionRecord, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var env envelope[[]models.TransactionRecord]
	if err := c.do(ctx, http.MethodGet, "/recent?"+q.Encode(), nil, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	if env.Data == nil {
		env.Data = []models.TransactionRecord{}
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func errorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	return body.Error
}
