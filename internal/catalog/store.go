package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/fekuna/omnipos-restock-service/internal/model"
)

// Store is the in-memory catalog backed by a Repository.
// It is not safe for concurrent use; the inventory usecase serializes access.
type Store struct {
	repo     Repository
	products map[string]model.Product
}

func NewStore(repo Repository) *Store {
	return &Store{
		repo:     repo,
		products: make(map[string]model.Product),
	}
}

// Load replaces the in-memory mapping with the repository contents. On failure,
// including a record that fails validation, the mapping is left empty and the
// returned error wraps ErrPersistence.
func (s *Store) Load(ctx context.Context) error {
	products, err := s.repo.Load(ctx)
	if err != nil {
		s.products = make(map[string]model.Product)
		return wrapPersistence("load catalog", err)
	}
	if products == nil {
		products = make(map[string]model.Product)
	}
	if err := checkRecords(products); err != nil {
		s.products = make(map[string]model.Product)
		return wrapPersistence("load catalog", err)
	}
	s.products = products
	return nil
}

// checkRecords rejects a catalog holding a record keyed under another id or
// breaking a stored-record invariant. Such a catalog is treated as malformed.
func checkRecords(products map[string]model.Product) error {
	for id, p := range products {
		if p.ProductID != id {
			return fmt.Errorf("record %q carries product_id %q", id, p.ProductID)
		}
		if err := p.Check(); err != nil {
			return fmt.Errorf("record %q: %w", id, err)
		}
	}
	return nil
}

func (s *Store) Save(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.snapshot()); err != nil {
		return wrapPersistence("save catalog", err)
	}
	return nil
}

func (s *Store) Get(id string) (model.Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

func (s *Store) Put(p model.Product) {
	s.products[p.ProductID] = p
}

func (s *Store) Delete(id string) {
	delete(s.products, id)
}

func (s *Store) Len() int {
	return len(s.products)
}

// List returns the products ordered by id.
func (s *Store) List() []model.Product {
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func (s *Store) snapshot() map[string]model.Product {
	cp := make(map[string]model.Product, len(s.products))
	for k, v := range s.products {
		cp[k] = v
	}
	return cp
}

func wrapPersistence(op string, err error) error {
	if errors.Is(err, ErrPersistence) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
