package inventory

import (
	"context"

	"github.com/fekuna/omnipos-restock-service/internal/model"
)

// EventRecorder receives every event the usecase emits. Implementations must
// not block for long: the usecase calls Record while holding its lock.
type EventRecorder interface {
	Record(ctx context.Context, event *model.InventoryEvent) error
}
