package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fekuna/omnipos-restock-service/internal/model"
)

// FileRepository keeps the catalog as one JSON object keyed by product_id.
type FileRepository struct {
	Path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{Path: path}
}

func (r *FileRepository) Load(ctx context.Context) (map[string]model.Product, error) {
	products := make(map[string]model.Product)

	data, err := os.ReadFile(r.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return products, nil
		}
		return products, fmt.Errorf("read %s: %w", r.Path, err)
	}

	if err := json.Unmarshal(data, &products); err != nil {
		return make(map[string]model.Product), fmt.Errorf("decode %s: %w", r.Path, err)
	}

	for id, p := range products {
		if p.ProductID == "" {
			p.ProductID = id
			products[id] = p
		}
	}
	return products, nil
}

// Save writes to a temp file in the same directory and renames it over Path,
// so a concurrent Load sees either the old or the new snapshot.
func (r *FileRepository) Save(ctx context.Context, products map[string]model.Product) error {
	if products == nil {
		products = map[string]model.Product{}
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	dir := filepath.Dir(r.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, r.Path); err != nil {
		return fmt.Errorf("replace %s: %w", r.Path, err)
	}
	return nil
}
