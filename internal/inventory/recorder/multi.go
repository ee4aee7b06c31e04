package recorder

import (
	"context"

	"github.com/fekuna/omnipos-restock-service/internal/inventory"
	"github.com/fekuna/omnipos-restock-service/internal/model"
	"go.uber.org/multierr"
)

type multiRecorder struct {
	recorders []inventory.EventRecorder
}

// Multi fans every event out to all recorders; one failing does not stop the rest.
func Multi(recorders ...inventory.EventRecorder) inventory.EventRecorder {
	var kept []inventory.EventRecorder
	for _, r := range recorders {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return &multiRecorder{recorders: kept}
}

func (m *multiRecorder) Record(ctx context.Context, ev *model.InventoryEvent) error {
	var err error
	for _, r := range m.recorders {
		err = multierr.Append(err, r.Record(ctx, ev))
	}
	return err
}
