package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/spotfinder/backend/internal/models"
)

const TypeLocationCreated = "location.created"

type LocationCreated struct {
	Type           string          `json:"type"`
	RegistrationID string          `json:"registrationId"`
	Location       models.Location `json:"location"`
	NearbyCount    int             `json:"nearbyCount"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

type Publisher interface {
	PublishLocationCreated(ctx context.Context, ev LocationCreated) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
	logger zerolog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

func NewPublisherWithWriter(w MessageWriter, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logger}
}

func (p *KafkaPublisher) PublishLocationCreated(ctx context.Context, ev LocationCreated) error {
	if ev.Type == "" {
		ev.Type = TypeLocationCreated
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.Location.ID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
		Time: ev.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	p.logger.Debug().Int64("location_id", ev.Location.ID).Msg("location event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher only logs. Used when no broker is configured.
type NopPublisher struct {
	Logger zerolog.Logger
}

func (n NopPublisher) PublishLocationCreated(ctx context.Context, ev LocationCreated) error {
	n.Logger.Debug().Int64("location_id", ev.Location.ID).Msg("event publishing disabled")
	return nil
}

func (n NopPublisher) Close() error {
	return nil
}
