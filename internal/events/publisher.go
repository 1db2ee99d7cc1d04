package events

import (
	"context"
	"encoding/json"
	"fmt"

	kafkaGo "github.com/segmentio/kafka-go"

	"kasir/internal/domain"
)

// Publisher emits sale events for downstream consumers (audit, analytics).
// Publishing is best-effort: a failed publish never rolls back a sale.
type Publisher interface {
	TransactionCompleted(ctx context.Context, t *domain.Transaction) error
	Close() error
}

// Nop is used when no brokers are configured
type Nop struct{}

func (Nop) TransactionCompleted(context.Context, *domain.Transaction) error { return nil }
func (Nop) Close() error                                                    { return nil }

// Kafka publishes JSON-encoded transactions keyed by transaction id
type Kafka struct {
	writer *kafkaGo.Writer
}

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		writer: &kafkaGo.Writer{
			Addr:     kafkaGo.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafkaGo.LeastBytes{},
		},
	}
}

func (k *Kafka) TransactionCompleted(ctx context.Context, t *domain.Transaction) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction event: %w", err)
	}
	return k.writer.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(t.ID),
		Value: payload,
	})
}

func (k *Kafka) Close() error { return k.writer.Close() }
