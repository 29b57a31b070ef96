package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/logger"
	"github.com/oshokin/catpoint/internal/pbconv"
)

// Event is the message published for every notification.
type Event struct {
	// ID is unique per event.
	ID string `json:"id"`
	// Kind is pbconv.KindAlarmStatus or pbconv.KindCatDetected.
	Kind string `json:"kind"`
	// AlarmStatus is set for alarm status events.
	AlarmStatus *domain.AlarmStatus `json:"alarm_status,omitempty"`
	// CatDetected is set for cat detection events.
	CatDetected *bool `json:"cat_detected,omitempty"`
	// Timestamp is the moment the event was produced, in UTC.
	Timestamp time.Time `json:"timestamp"`
}

// KafkaPublisher publishes events to a Kafka topic, keyed by kind.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
	newID    func() string
}

// NewKafkaPublisher connects a synchronous producer to the brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return NewPublisher(producer, topic), nil
}

// NewPublisher wraps an existing producer.
func NewPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// OnAlarmStatusChanged publishes an alarm status event.
func (p *KafkaPublisher) OnAlarmStatusChanged(ctx context.Context, status domain.AlarmStatus) {
	event := p.newEvent(pbconv.KindAlarmStatus)
	event.AlarmStatus = &status

	p.publish(ctx, event)
}

// OnCatDetected publishes a cat detection event.
func (p *KafkaPublisher) OnCatDetected(ctx context.Context, detected bool) {
	event := p.newEvent(pbconv.KindCatDetected)
	event.CatDetected = &detected

	p.publish(ctx, event)
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) newEvent(kind string) *Event {
	return &Event{
		ID:        p.newID(),
		Kind:      kind,
		Timestamp: p.now().UTC(),
	}
}

// publish sends the event. Failures are logged; listeners cannot fail.
func (p *KafkaPublisher) publish(ctx context.Context, event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to encode event", "kind", event.Kind, "error", err)
		return
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Kind),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		logger.ErrorKV(ctx, "Failed to publish event", "kind", event.Kind, "topic", p.topic, "error", err)
		return
	}

	logger.DebugKV(ctx, "Event published",
		"kind", event.Kind,
		"topic", p.topic,
		"partition", partition,
		"offset", offset)
}
