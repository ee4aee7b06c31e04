package model

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MaxQuantity bounds every count on a product. It matches the INTEGER
	// columns of the products table and the int32 range of the gRPC surface.
	MaxQuantity = math.MaxInt32

	// HighPriorityMinThreshold is the lowest threshold a high priority product may carry.
	HighPriorityMinThreshold = 10
)

// Priority controls the threshold floor and the restock batch scaling.
type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityLow  Priority = "low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityLow
}

type Status string

const (
	StatusOK             Status = "ok"
	StatusBelowThreshold Status = "below_threshold"
	StatusOutOfStock     Status = "out_of_stock"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusBelowThreshold, StatusOutOfStock:
		return true
	}
	return false
}

type Product struct {
	ProductID       string   `db:"product_id" json:"product_id"`
	Name            string   `db:"name" json:"name"`
	StockQuantity   int      `db:"stock_quantity" json:"stock_quantity"`
	MinThreshold    int      `db:"min_threshold" json:"min_threshold"`
	RestockQuantity int      `db:"restock_quantity" json:"restock_quantity"`
	Priority        Priority `db:"priority" json:"priority"`
	Category        Category `db:"category" json:"category"`
}

// Check reports the first stored-record invariant p violates.
func (p Product) Check() error {
	switch {
	case p.ProductID == "":
		return errors.New("product_id is empty")
	case p.StockQuantity < 0 || p.StockQuantity > MaxQuantity:
		return fmt.Errorf("stock_quantity %d out of range", p.StockQuantity)
	case p.MinThreshold < 0 || p.MinThreshold > MaxQuantity:
		return fmt.Errorf("min_threshold %d out of range", p.MinThreshold)
	case p.RestockQuantity <= 0 || p.RestockQuantity > MaxQuantity:
		return fmt.Errorf("restock_quantity %d out of range", p.RestockQuantity)
	case !p.Priority.Valid():
		return fmt.Errorf("unknown priority %q", p.Priority)
	case p.Priority == PriorityHigh && p.MinThreshold < HighPriorityMinThreshold:
		return fmt.Errorf("high priority min_threshold %d below %d", p.MinThreshold, HighPriorityMinThreshold)
	case !p.Category.Valid():
		return fmt.Errorf("unknown category %q", p.Category)
	}
	return nil
}

// Status is derived from the current counts and never stored.
func (p Product) Status() Status {
	switch {
	case p.StockQuantity == 0:
		return StatusOutOfStock
	case p.StockQuantity < p.MinThreshold:
		return StatusBelowThreshold
	default:
		return StatusOK
	}
}

func (p Product) StatusView() StatusView {
	return StatusView{
		ProductID:     p.ProductID,
		StockQuantity: p.StockQuantity,
		Status:        p.Status(),
		Priority:      p.Priority,
	}
}

type StatusView struct {
	ProductID     string   `json:"product_id"`
	StockQuantity int      `json:"stock_quantity"`
	Status        Status   `json:"status"`
	Priority      Priority `json:"priority"`
}
