package recorder

import (
	"context"

	"github.com/fekuna/omnipos-restock-service/internal/logger"
	"github.com/fekuna/omnipos-restock-service/internal/model"
	"go.uber.org/zap"
)

// LogRecorder writes every event as one structured log line.
type LogRecorder struct {
	logger logger.ZapLogger
}

func NewLogRecorder(log logger.ZapLogger) *LogRecorder {
	return &LogRecorder{logger: log.With(zap.String("stream", "inventory_events"))}
}

func (r *LogRecorder) Record(ctx context.Context, ev *model.InventoryEvent) error {
	fields := []zap.Field{
		zap.String("event_id", ev.ID),
		zap.String("operation", string(ev.Operation)),
		zap.String("outcome", string(ev.Outcome)),
		zap.String("product_id", ev.ProductID),
		zap.Int("quantity_before", ev.QuantityBefore),
		zap.Int("quantity_after", ev.QuantityAfter),
		zap.Int("quantity_change", ev.QuantityChange),
		zap.Time("created_at", ev.CreatedAt),
	}
	if ev.Notes != "" {
		fields = append(fields, zap.String("notes", ev.Notes))
	}
	if ev.Actor != "" {
		fields = append(fields, zap.String("actor", ev.Actor))
	}

	if ev.Outcome == model.OutcomeSuccess {
		r.logger.Info("inventory event", fields...)
	} else {
		r.logger.Warn("inventory event", fields...)
	}
	return nil
}
