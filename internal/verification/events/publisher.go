// Package events publishes verification outcomes to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"idflow/internal/platform/kafka/producer"
	"idflow/internal/verification/models"
	"idflow/pkg/requestcontext"
)

// EventType is carried in the event_type header of every outcome message.
const EventType = "verification.outcome"

// Producer is the subset of the Kafka producer used here.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaPublisher writes outcomes to a topic keyed by interview ID, so all
// outcomes for one interview land on the same partition.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

func NewKafkaPublisher(p Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event models.OutcomeEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	headers := map[string]string{"event_type": EventType}
	if id := requestcontext.RequestID(ctx); id != "" {
		headers["request_id"] = id
	}
	return p.producer.Produce(ctx, &producer.Message{
		Topic:   p.topic,
		Key:     []byte(event.InterviewID),
		Value:   value,
		Headers: headers,
	})
}

// LogPublisher records outcomes in the service log when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event models.OutcomeEvent) error {
	p.logger.InfoContext(ctx, "verification outcome",
		"event_type", EventType,
		"interview_id", event.InterviewID,
		"state", string(event.State),
		"verdict", string(event.Verdict),
		"identity_uuid", event.IdentityUUID,
		"existing_customer", event.ExistingCustomer,
		"occurred_at", event.OccurredAt,
	)
	return nil
}
