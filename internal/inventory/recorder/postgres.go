package recorder

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-restock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const eventsSchema = `
CREATE TABLE IF NOT EXISTS inventory_events (
    id              UUID PRIMARY KEY,
    operation       TEXT NOT NULL,
    outcome         TEXT NOT NULL,
    product_id      TEXT NOT NULL,
    quantity_before INTEGER NOT NULL,
    quantity_after  INTEGER NOT NULL,
    quantity_change INTEGER NOT NULL,
    notes           TEXT NOT NULL DEFAULT '',
    actor           TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL
)`

// PGRecorder appends events to the inventory_events table.
type PGRecorder struct {
	DB *sqlx.DB
}

func NewPGRecorder(db *sqlx.DB) *PGRecorder {
	return &PGRecorder{DB: db}
}

func (r *PGRecorder) Migrate(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, eventsSchema); err != nil {
		return fmt.Errorf("failed to create inventory_events table: %w", err)
	}
	return nil
}

func (r *PGRecorder) Record(ctx context.Context, ev *model.InventoryEvent) error {
	query := `
        INSERT INTO inventory_events (
            id, operation, outcome, product_id,
            quantity_before, quantity_after, quantity_change,
            notes, actor, created_at
        )
        VALUES (
            :id, :operation, :outcome, :product_id,
            :quantity_before, :quantity_after, :quantity_change,
            :notes, :actor, :created_at
        )
    `
	if _, err := r.DB.NamedExecContext(ctx, query, ev); err != nil {
		return fmt.Errorf("failed to log event: %w", err)
	}
	return nil
}
