package gateway

import (
	"context"
	"time"

	"github.com/femtoworks/femto-gateway/internal/domain"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	kafka "github.com/segmentio/kafka-go"
)

const (
	MessageIDKafkaHeaderKey = "message_id"
	TenantIDKafkaHeaderKey  = "tenant_id"
	RequestIDKafkaHeaderKey = "request_id"
	DateReceivedHeaderKey   = "date_received"
)

// MessagePublisher writes one serialized event to a named topic on the
// bus.  Publish is fire-and-forget: errors surface to the caller and are
// never retried internally.
type MessagePublisher interface {
	Publish(ctx context.Context, topic domain.Topic, key domain.TenantID, requestID string, payload []byte) error
}

type kafkaMessagePublisher struct {
	kafkaWriter    *kafka.Writer
	publishTimeout time.Duration
}

// NewKafkaMessagePublisher wraps a topic-less kafka writer.  The topic is
// set per message since each tenant routes to its own destination.
func NewKafkaMessagePublisher(kafkaWriter *kafka.Writer, publishTimeout time.Duration) MessagePublisher {
	return &kafkaMessagePublisher{
		kafkaWriter:    kafkaWriter,
		publishTimeout: publishTimeout,
	}
}

func (kmp *kafkaMessagePublisher) Publish(ctx context.Context, topic domain.Topic, key domain.TenantID, requestID string, payload []byte) error {

	kafkaWriteDurationTimer := prometheus.NewTimer(metrics.kafkaWriterPublishDuration)
	defer kafkaWriteDurationTimer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, kmp.publishTimeout)
	defer cancel()

	messageID, err := uuid.NewRandom()
	if err != nil {
		return err
	}

	// Use the tenant id as the message key.  All messages with the same key
	// get sent to the same partition, which retains per-tenant ordering.
	err = kmp.kafkaWriter.WriteMessages(ctx,
		kafka.Message{
			Topic: topic.String(),
			Headers: []kafka.Header{
				{Key: MessageIDKafkaHeaderKey, Value: []byte(messageID.String())},
				{Key: TenantIDKafkaHeaderKey, Value: []byte(key)},
				{Key: RequestIDKafkaHeaderKey, Value: []byte(requestID)},
				{Key: DateReceivedHeaderKey, Value: []byte(time.Now().UTC().Format(time.RFC3339Nano))},
			},
			Key:   []byte(key),
			Value: payload,
		})

	if err != nil {
		metrics.kafkaPublishFailureCounter.Inc()
	}

	return err
}
