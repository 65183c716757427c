package messaging

import (
	"context"
	"errors"
	"testing"

	"storereviews/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaProducer_PublishMessage(t *testing.T) {
	writer := &fakeWriter{}
	producer := &KafkaProducer{writer: writer, topic: "review_events_test"}

	err := producer.PublishMessage(context.Background(), "store-1", []byte(`{"event_type":"REVIEW_CREATED"}`))
	require.NoError(t, err)

	require.Len(t, writer.messages, 1)
	assert.Equal(t, "store-1", string(writer.messages[0].Key))
	assert.JSONEq(t, `{"event_type":"REVIEW_CREATED"}`, string(writer.messages[0].Value))
	assert.False(t, writer.messages[0].Time.IsZero())

	produced := testutil.ToFloat64(metrics.KafkaMessagesProduced.WithLabelValues(serviceName, "review_events_test"))
	assert.Equal(t, float64(1), produced)

	require.NoError(t, producer.Close())
	assert.True(t, writer.closed)
}

func TestKafkaProducer_PublishMessage_Error(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker unavailable")}
	producer := &KafkaProducer{writer: writer, topic: "review_events_err"}

	err := producer.PublishMessage(context.Background(), "key", []byte("{}"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write message to kafka")

	failed := testutil.ToFloat64(metrics.KafkaErrors.WithLabelValues(serviceName, "review_events_err", "produce"))
	assert.Equal(t, float64(1), failed)
}
