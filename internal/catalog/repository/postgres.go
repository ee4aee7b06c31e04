package repository

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-restock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const productsSchema = `
CREATE TABLE IF NOT EXISTS products (
    product_id       TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    stock_quantity   INTEGER NOT NULL CHECK (stock_quantity >= 0),
    min_threshold    INTEGER NOT NULL CHECK (min_threshold >= 0),
    restock_quantity INTEGER NOT NULL CHECK (restock_quantity > 0),
    priority         TEXT NOT NULL,
    category         TEXT NOT NULL
)`

// Postgres caps bind parameters at 65535; seven columns per row.
const insertBatchSize = 1000

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Migrate(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, productsSchema); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}

func (r *PGRepository) Load(ctx context.Context) (map[string]model.Product, error) {
	var items []model.Product
	query := `SELECT product_id, name, stock_quantity, min_threshold, restock_quantity, priority, category FROM products`
	if err := r.DB.SelectContext(ctx, &items, query); err != nil {
		return make(map[string]model.Product), err
	}

	products := make(map[string]model.Product, len(items))
	for _, p := range items {
		products[p.ProductID] = p
	}
	return products, nil
}

// Save replaces the whole table inside one transaction.
func (r *PGRepository) Save(ctx context.Context, products map[string]model.Product) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}

	if len(products) > 0 {
		rows := make([]model.Product, 0, len(products))
		for _, p := range products {
			rows = append(rows, p)
		}
		insertQuery := `
            INSERT INTO products (
                product_id, name, stock_quantity, min_threshold,
                restock_quantity, priority, category
            )
            VALUES (
                :product_id, :name, :stock_quantity, :min_threshold,
                :restock_quantity, :priority, :category
            )
        `
		for start := 0; start < len(rows); start += insertBatchSize {
			end := min(start+insertBatchSize, len(rows))
			if _, err := tx.NamedExecContext(ctx, insertQuery, rows[start:end]); err != nil {
				return fmt.Errorf("failed to insert products: %w", err)
			}
		}
	}

	return tx.Commit()
}
