package integrations

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/spec-kit/gatelaunch/internal/domain"
)

// KafkaProvider publishes notifications to a topic keyed by notification id.
type KafkaProvider struct {
	writer *kafka.Writer
}

// NewKafkaProvider builds a writer for brokers and topic.
func NewKafkaProvider(brokers []string, topic string) *KafkaProvider {
	return &KafkaProvider{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}}
}

func (p *KafkaProvider) Name() string { return "kafka" }

func (p *KafkaProvider) Send(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(map[string]any{"event": n.Type, "notification": n})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(n.ID), Value: body})
}

// Close flushes and closes the writer.
func (p *KafkaProvider) Close() error {
	return p.writer.Close()
}
