package model

import "time"

type Operation string

const (
	OperationCreateProduct Operation = "create_product"
	OperationGetStatus     Operation = "get_status"
	OperationPurchase      Operation = "purchase"
	OperationRestock       Operation = "restock"
)

type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeInvalidInput       Outcome = "invalid_input"
	OutcomeNotFound           Outcome = "not_found"
	OutcomeInsufficientStock  Outcome = "insufficient_stock"
	OutcomeStockLimit         Outcome = "stock_limit_exceeded"
	OutcomePersistenceFailure Outcome = "persistence_failure"
)

// InventoryEvent is the structured trace of one engine decision.
type InventoryEvent struct {
	ID             string    `db:"id" json:"id"`
	Operation      Operation `db:"operation" json:"operation"`
	Outcome        Outcome   `db:"outcome" json:"outcome"`
	ProductID      string    `db:"product_id" json:"product_id"`
	QuantityBefore int       `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after" json:"quantity_after"`
	QuantityChange int       `db:"quantity_change" json:"quantity_change"`
	Notes          string    `db:"notes" json:"notes,omitempty"`
	Actor          string    `db:"actor" json:"actor,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
