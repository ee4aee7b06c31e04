package dto

import "github.com/fekuna/omnipos-restock-service/internal/model"

type CreateProductInput struct {
	ProductID       string
	Name            string
	StockQuantity   int
	MinThreshold    int
	RestockQuantity int
	Priority        model.Priority
}

type PurchaseInput struct {
	ProductID string
	Quantity  int
	Reference string // order id when the purchase comes from an order event
}
