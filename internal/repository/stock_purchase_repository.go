package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shortie-pos/internal/domain"

	"github.com/google/uuid"
)

// StockPurchaseRepository persists restock events. A purchase and the stock
// increment it causes commit in one transaction; purchase rows are
// append-only and have no update or delete path.
type StockPurchaseRepository interface {
	Create(ctx context.Context, purchase *domain.StockPurchase) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.StockPurchase, error)
}

type stockPurchaseRepository struct {
	db *sql.DB
}

// NewStockPurchaseRepository creates a new instance of StockPurchaseRepository
func NewStockPurchaseRepository(db *sql.DB) StockPurchaseRepository {
	return &stockPurchaseRepository{db: db}
}

// Create appends the purchase record and adds its units to the product's
// stock. Sold-unit counters are untouched by restocking.
func (r *stockPurchaseRepository) Create(ctx context.Context, purchase *domain.StockPurchase) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO stock_purchases (id, product_id, batches_purchased, cost_per_batch,
		                             total_cost, units_added, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(
		ctx,
		query,
		purchase.ID,
		purchase.ProductID,
		purchase.BatchesPurchased,
		purchase.CostPerBatch,
		purchase.TotalCost,
		purchase.UnitsAdded,
		purchase.Notes,
		purchase.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create stock purchase: %w", err)
	}

	result, err := tx.ExecContext(
		ctx,
		`UPDATE products SET current_stock = current_stock + $2 WHERE id = $1`,
		purchase.ProductID,
		purchase.UnitsAdded,
	)
	if err != nil {
		return fmt.Errorf("failed to add stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit restock: %w", err)
	}

	return nil
}

// ListByProduct retrieves the restock history of a product, newest first
func (r *stockPurchaseRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.StockPurchase, error) {
	query := `
		SELECT id, product_id, batches_purchased, cost_per_batch,
		       total_cost, units_added, notes, created_at
		FROM stock_purchases
		WHERE product_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock purchases: %w", err)
	}
	defer rows.Close()

	purchases := []*domain.StockPurchase{}
	for rows.Next() {
		purchase := &domain.StockPurchase{}
		err := rows.Scan(
			&purchase.ID,
			&purchase.ProductID,
			&purchase.BatchesPurchased,
			&purchase.CostPerBatch,
			&purchase.TotalCost,
			&purchase.UnitsAdded,
			&purchase.Notes,
			&purchase.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock purchase: %w", err)
		}
		purchases = append(purchases, purchase)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock purchases: %w", err)
	}

	return purchases, nil
}
