// internal/service/purchase/infrastructure/settlement_kafka_publisher.go
package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"pulsequeue/internal/pkg/mq"
	"pulsequeue/internal/service/purchase/domain"
)

// SettlementKafkaPublisher implements port.SettlementPublisher. Messages are
// keyed by order id, so all events of one order stay on one partition.
type SettlementKafkaPublisher struct {
	writer *kafka.Writer
}

func NewSettlementKafkaPublisher(writer *kafka.Writer) *SettlementKafkaPublisher {
	return &SettlementKafkaPublisher{writer: writer}
}

func (p *SettlementKafkaPublisher) Publish(ctx context.Context, event *domain.SettlementRequested) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal settlement request")
	}
	// ProduceMessage injects the trace context into the message headers.
	if err := mq.ProduceMessage(ctx, p.writer, []byte(event.OrderID), eventBytes); err != nil {
		return errors.Wrap(err, "failed to produce settlement request")
	}
	return nil
}

// Close closes the underlying writer.
func (p *SettlementKafkaPublisher) Close() error {
	return p.writer.Close()
}
