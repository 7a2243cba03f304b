package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fraudlens/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	event := PredictionEvent{
		TransactionID: "txn_abc",
		Fraud:         true,
		Confidence:    0.93,
		Amount:        512.4,
		Timestamp:     ts,
	}

	t.Run("writes keyed json message", func(t *testing.T) {
		w := new(MockWriter)
		w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 || string(msgs[0].Key) != "txn_abc" || !msgs[0].Time.Equal(ts) {
				return false
			}
			var got PredictionEvent
			if err := json.Unmarshal(msgs[0].Value, &got); err != nil {
				return false
			}
			return got.Fraud && got.Amount == 512.4
		})).Return(nil)

		p := NewKafkaPublisherWithWriter(w)
		require.NoError(t, p.Publish(context.Background(), event))
		w.AssertExpectations(t)
	})

	t.Run("several events share one write", func(t *testing.T) {
		second := event
		second.TransactionID = "txn_def"

		w := new(MockWriter)
		w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
			return len(msgs) == 2 && string(msgs[0].Key) == "txn_abc" && string(msgs[1].Key) == "txn_def"
		})).Return(nil).Once()

		p := NewKafkaPublisherWithWriter(w)
		require.NoError(t, p.Publish(context.Background(), event, second))
		w.AssertExpectations(t)
	})

	t.Run("no events skips the writer", func(t *testing.T) {
		w := new(MockWriter)

		p := NewKafkaPublisherWithWriter(w)
		require.NoError(t, p.Publish(context.Background()))
		w.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
	})

	t.Run("wraps writer failure", func(t *testing.T) {
		w := new(MockWriter)
		w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("leader not available"))

		p := NewKafkaPublisherWithWriter(w)
		err := p.Publish(context.Background(), event)
		assert.ErrorIs(t, err, ErrPublishFailed)
		assert.Contains(t, err.Error(), "leader not available")
	})
}

func TestNewKafkaPublisher_Config(t *testing.T) {
	_, err := NewKafkaPublisher(KafkaConfig{Topic: "fraud.predictions"})
	assert.ErrorIs(t, err, ErrNoBrokers)

	_, err = NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.ErrorIs(t, err, ErrNoTopic)

	p, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "fraud.predictions"})
	require.NoError(t, err)

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "fraud.predictions", w.Topic)
	assert.Equal(t, writerBatchSize, w.BatchSize)
	assert.LessOrEqual(t, w.BatchTimeout, 10*time.Millisecond)
	assert.Positive(t, w.BatchTimeout)
	assert.NoError(t, p.Close())
}

func TestNewPredictionEvent(t *testing.T) {
	result := &models.PredictionResult{
		Fraud:         false,
		Confidence:    0.97,
		TransactionID: "txn_1",
		Timestamp:     "2024-01-15T10:30:00Z",
	}
	event := NewPredictionEvent(result, models.TransactionFeatures{Amount: 42}, "10.0.0.1")

	assert.Equal(t, "txn_1", event.TransactionID)
	assert.Equal(t, 42.0, event.Amount)
	assert.Equal(t, "10.0.0.1", event.ClientIP)
	assert.True(t, event.Timestamp.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)))
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), PredictionEvent{}))
	assert.NoError(t, p.Close())
}
