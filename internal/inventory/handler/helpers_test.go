package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-restock-service/internal/catalog"
	"github.com/fekuna/omnipos-restock-service/internal/inventory"
	"github.com/fekuna/omnipos-restock-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-restock-service/internal/logger"
	"github.com/fekuna/omnipos-restock-service/internal/model"
	"github.com/stretchr/testify/require"
)

type memRepository struct {
	saved  map[string]model.Product
	broken bool
}

func (m *memRepository) Load(ctx context.Context) (map[string]model.Product, error) {
	return map[string]model.Product{}, nil
}

func (m *memRepository) Save(ctx context.Context, products map[string]model.Product) error {
	if m.broken {
		return errors.New("disk full")
	}
	m.saved = products
	return nil
}

func newTestUseCase(t *testing.T) (inventory.UseCase, *memRepository) {
	t.Helper()
	repo := &memRepository{}
	store := catalog.NewStore(repo)
	require.NoError(t, store.Load(context.Background()))
	return usecase.NewInventoryUseCase(store, nil, logger.NewNop()), repo
}
