//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"idflow/internal/platform/config"
	"idflow/internal/platform/kafka/producer"
	"idflow/internal/verification/events"
	"idflow/internal/verification/models"
	"idflow/pkg/testutil/containers"
)

func TestKafkaPublisher_RoundTrip(t *testing.T) {
	kc := containers.GetManager().GetKafka(t)
	ctx := context.Background()
	topic := "verification.outcomes.it"
	require.NoError(t, kc.CreateTopic(ctx, topic, 1))

	prod, err := producer.New(config.KafkaConfig{
		Brokers:         kc.Brokers,
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer prod.Close()

	pub := events.NewKafkaPublisher(prod, topic)
	require.NoError(t, pub.Publish(ctx, models.OutcomeEvent{
		InterviewID: "int-42",
		State:       models.StateFailed,
		Verdict:     models.VerdictFail,
		OccurredAt:  time.Now().UTC(),
	}))

	consumer, err := kc.NewConsumer(topic)
	require.NoError(t, err)
	defer consumer.Close()

	record := kc.WaitForRecord(ctx, consumer, 15*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "int-42"
	})
	require.NotNil(t, record)

	var got models.OutcomeEvent
	require.NoError(t, json.Unmarshal(record.Value, &got))
	require.Equal(t, models.StateFailed, got.State)
}
