// Package events publishes SCA status-change events for downstream
// consumers (fraud monitoring, reporting). Delivery is best effort: the
// orchestrator never fails a transition because an event could not be sent.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"xs2gate/internal/authorization/ports"
	dErrors "xs2gate/pkg/domain-errors"
)

// KafkaPublisher writes status-change events to one Kafka topic, keyed by
// authorisation ID so per-authorisation ordering is preserved.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// KafkaOption configures the KafkaPublisher.
type KafkaOption func(*KafkaPublisher)

// WithLogger sets a logger for delivery failures.
func WithLogger(logger *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) { p.logger = logger }
}

// NewKafkaPublisher connects to the brokers and ensures the topic exists.
func NewKafkaPublisher(ctx context.Context, brokers []string, topic string, opts ...KafkaOption) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, dErrors.New(dErrors.CodeConfiguration, "at least one Kafka broker is required")
	}
	if topic == "" {
		return nil, dErrors.New(dErrors.CodeConfiguration, "Kafka topic is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "create Kafka client")
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	p := &KafkaPublisher{client: client, topic: topic}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "create Kafka topic")
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return dErrors.Wrap(resp.Err, dErrors.CodeConfiguration, "create Kafka topic "+resp.Topic)
		}
	}
	return nil
}

// Emit produces one event asynchronously. Delivery failures are logged, not
// returned, matching the best-effort contract.
func (p *KafkaPublisher) Emit(ctx context.Context, event ports.StatusChange) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal status change event")
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.AuthorisationID.String()),
		Value: raw,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Warn("failed to deliver status change event",
				"authorisation_id", event.AuthorisationID.String(),
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes pending records and releases the client.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	if err := p.client.Flush(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "flush Kafka producer")
	}
	p.client.Close()
	return nil
}
