// Package events publishes scored predictions to a message stream so
// downstream consumers (alerting, analytics) can react without polling
// the API.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fraudlens/internal/models"

	"github.com/segmentio/kafka-go"
)

// PredictionEvent is the payload written for every scored transaction.
type PredictionEvent struct {
	TransactionID string    `json:"transaction_id"`
	Fraud         bool      `json:"fraud"`
	Confidence    float64   `json:"confidence"`
	Amount        float64   `json:"amount"`
	ClientIP      string    `json:"client_ip,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewPredictionEvent builds an event from a scored result and its input.
func NewPredictionEvent(result *models.PredictionResult, features models.TransactionFeatures, clientIP string) PredictionEvent {
	ts, err := time.Parse(time.RFC3339Nano, result.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}
	return PredictionEvent{
		TransactionID: result.TransactionID,
		Fraud:         result.Fraud,
		Confidence:    result.Confidence,
		Amount:        features.Amount,
		ClientIP:      clientIP,
		Timestamp:     ts,
	}
}

// Publisher sends prediction events to a stream. A call with several
// events writes them together.
type Publisher interface {
	Publish(ctx context.Context, events ...PredictionEvent) error
	Close() error
}

// KafkaConfig holds Kafka connection configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	// writerBatchTimeout bounds how long a synchronous write waits for more
	// messages. kafka-go defaults to 1s, which would stall every request.
	writerBatchTimeout = 10 * time.Millisecond
	writerBatchSize    = 100
)

// KafkaPublisher implements Publisher using Kafka
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaPublisher creates a publisher writing to cfg.Topic.
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if cfg.Topic == "" {
		return nil, ErrNoTopic
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              writerBatchSize,
		BatchTimeout:           writerBatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithWriter(writer), nil
}

// NewKafkaPublisherWithWriter wraps an existing writer.
func NewKafkaPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish sends the events in one write, each keyed by transaction id.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...PredictionEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal prediction event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.TransactionID),
			Value: data,
			Time:  event.Timestamp,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	return nil
}

// Close closes the producer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...PredictionEvent) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }
