package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/minimart/minimart/internal/domain/event"
)

// Client holds the broker bootstrap list parsed from a CSV string. An empty
// list means the mirror is disabled.
type Client struct {
	Brokers []string
}

func NewClient(brokersCSV string) *Client {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers}
}

func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

func (c *Client) NewWriter(topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
	}
}

// Producer is the slice of *kafka.Writer the mirror needs.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type envelope struct {
	Event      string      `json:"event"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    event.Event `json:"payload"`
}

// Mirror republishes bus events to a Kafka topic so consumers outside the
// process can follow the order lifecycle. Delivery is best effort; the bus
// logs and swallows any error the mirror returns.
type Mirror struct {
	producer Producer
	log      *zap.Logger
}

func NewMirror(producer Producer, logger *zap.Logger) *Mirror {
	return &Mirror{
		producer: producer,
		log:      logger.With(zap.String("component", "kafka_mirror")),
	}
}

// Register subscribes the mirror to the given event names.
func (m *Mirror) Register(sub event.Subscriber, eventNames ...string) {
	for _, name := range eventNames {
		sub.Subscribe(name, m.handle)
	}
}

func (m *Mirror) handle(ctx context.Context, e event.Event) error {
	data, err := json.Marshal(envelope{
		Event:      e.EventName(),
		OccurredAt: time.Now().UTC(),
		Payload:    e,
	})
	if err != nil {
		return fmt.Errorf("kafka mirror: marshal %s: %w", e.EventName(), err)
	}

	err = m.producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(e.EventName()),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("kafka mirror: write %s: %w", e.EventName(), err)
	}

	m.log.Debug("event_mirrored", zap.String("event", e.EventName()))
	return nil
}
