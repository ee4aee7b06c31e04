package recorder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fekuna/omnipos-restock-service/internal/model"
	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaRecorder publishes events keyed by product_id so one product's events
// stay ordered within a partition.
type KafkaRecorder struct {
	writer MessageWriter
}

func NewKafkaRecorder(writer MessageWriter) *KafkaRecorder {
	return &KafkaRecorder{writer: writer}
}

func (r *KafkaRecorder) Record(ctx context.Context, ev *model.InventoryEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.ProductID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "operation", Value: []byte(ev.Operation)},
			{Key: "outcome", Value: []byte(ev.Outcome)},
		},
		Time: ev.CreatedAt,
	}
	if err := r.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
