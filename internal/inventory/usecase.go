package inventory

import (
	"context"

	"github.com/fekuna/omnipos-restock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-restock-service/internal/model"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetStatus(ctx context.Context, productID string) (*model.StatusView, error)
	Purchase(ctx context.Context, input *dto.PurchaseInput) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.StatusView, error)
}
