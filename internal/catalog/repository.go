package catalog

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-restock-service/internal/model"
)

// ErrPersistence marks failures reading or writing the durable medium.
var ErrPersistence = errors.New("persistence failure")

// Repository is the durable medium behind a Store. Both directions move the
// whole mapping at once; there is no incremental format.
type Repository interface {
	// Load returns an empty, non-nil map and a nil error when nothing has been saved yet.
	Load(ctx context.Context) (map[string]model.Product, error)
	// Save replaces everything previously saved. Readers never observe a partial write.
	Save(ctx context.Context, products map[string]model.Product) error
}
