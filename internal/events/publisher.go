package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/config"
)

// Event types published by the compliance service
const (
	ReadinessComputed         = "readiness.computed"
	IncidentLogged            = "incident.logged"
	IncidentReported          = "incident.reported"
	ReleaseChecklistSubmitted = "release_checklist.submitted"
	AnimalStatusChanged       = "animal.status_changed"
)

const sourceService = "wildcare-compliance-engine"

// Event is a compliance event keyed by organisation
type Event struct {
	ID             string      `json:"id"`
	Type           string      `json:"type"`
	OrganizationID string      `json:"organization_id"`
	OccurredAt     time.Time   `json:"occurred_at"`
	Payload        interface{} `json:"payload"`
}

// NewEvent stamps a new event with an ID and time
func NewEvent(eventType, orgID string, payload interface{}) Event {
	return Event{
		ID:             uuid.New().String(),
		Type:           eventType,
		OrganizationID: orgID,
		OccurredAt:     time.Now().UTC(),
		Payload:        payload,
	}
}

// Publisher delivers compliance events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes events to a single Kafka topic
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewKafkaPublisher creates a publisher writing to the configured topic
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  cfg.MaxRetries,
		RequiredAcks: kafka.RequireAll,
	}
	return newKafkaPublisher(writer, cfg.Topic, cfg.WriteTimeout, logger)
}

func newKafkaPublisher(w messageWriter, topic string, timeout time.Duration, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, timeout: timeout, logger: logger}
}

// Publish writes the event keyed by organisation so one tenant's events stay ordered
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrganizationID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "source-service", Value: []byte(sourceService)},
		},
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("topic", p.topic),
			zap.String("event_type", event.Type),
			zap.String("organization_id", event.OrganizationID),
			zap.Error(err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Event published",
		zap.String("topic", p.topic),
		zap.String("event_type", event.Type),
		zap.String("event_id", event.ID))

	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher logs events instead of publishing them, for deployments without Kafka
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a publisher that only logs
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Debug("Compliance event",
		zap.String("event_type", event.Type),
		zap.String("organization_id", event.OrganizationID),
		zap.String("event_id", event.ID))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
