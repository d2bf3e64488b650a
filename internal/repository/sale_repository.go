package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shortie-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrSaleNotFound = errors.New("sale not found")
)

// SaleRepository persists sales together with their stock effects. Every
// mutating method runs in a single database transaction so a sale and the
// product counters it touches can never diverge: the sale header, its lines,
// and the stock deltas commit or roll back as one unit.
type SaleRepository interface {
	Create(ctx context.Context, sale *domain.Sale) error
	Replace(ctx context.Context, sale *domain.Sale) error
	Void(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Sale, error)
	DeleteAll(ctx context.Context) error
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

// Create inserts the sale header and its lines, then deducts stock and bumps
// sold units for each line, all within one transaction. Stock updates are
// single arithmetic statements so concurrent sales of the same product
// serialize on the row lock instead of losing updates.
func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sales (id, sale_date, total_amount, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, query, sale.ID, sale.SaleDate, sale.TotalAmount, sale.CreatedAt); err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	if err := r.insertItems(ctx, tx, sale.ID, sale.Items); err != nil {
		return err
	}

	for _, item := range sale.Items {
		if err := r.deductStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sale: %w", err)
	}

	return nil
}

// Replace swaps the content of an existing sale for new lines: restore the
// stock effect of every original line, delete the original lines, update the
// total, insert the new lines, and deduct stock for them. Restore-then-reapply
// rather than a line-level diff, so a product dropped from the cart is fully
// restored and a newly added one fully deducted. Original line quantities are
// read from the store inside the transaction, never trusted from the caller.
func (r *saleRepository) Replace(ctx context.Context, sale *domain.Sale) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	original, err := r.lineQuantities(ctx, tx, sale.ID)
	if err != nil {
		return err
	}

	for _, line := range original {
		if err := r.restoreStock(ctx, tx, line.productID, line.quantity); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, sale.ID); err != nil {
		return fmt.Errorf("failed to delete sale items: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE sales SET total_amount = $2 WHERE id = $1`, sale.ID, sale.TotalAmount)
	if err != nil {
		return fmt.Errorf("failed to update sale total: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSaleNotFound
	}

	if err := r.insertItems(ctx, tx, sale.ID, sale.Items); err != nil {
		return err
	}

	for _, item := range sale.Items {
		if err := r.deductStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sale edit: %w", err)
	}

	return nil
}

// Void reverses a sale: restore stock for every line, delete the lines, then
// delete the header. Lines go before the header to respect the foreign key.
// Quantities are read inside the transaction, so voiding an already-voided
// sale finds nothing to restore and fails with ErrSaleNotFound.
func (r *saleRepository) Void(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lines, err := r.lineQuantities(ctx, tx, id)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if err := r.restoreStock(ctx, tx, line.productID, line.quantity); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete sale items: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSaleNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit void: %w", err)
	}

	return nil
}

// FindByID retrieves a sale with its lines and product names
func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	query := `
		SELECT id, sale_date, total_amount, created_at
		FROM sales
		WHERE id = $1
	`

	sale := &domain.Sale{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sale.ID,
		&sale.SaleDate,
		&sale.TotalAmount,
		&sale.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}

	items, err := r.itemsForSale(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items

	return sale, nil
}

// ListRecent retrieves the latest sales with their lines, newest first
func (r *saleRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Sale, error) {
	query := `
		SELECT id, sale_date, total_amount, created_at
		FROM sales
		ORDER BY sale_date DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []*domain.Sale{}
	for rows.Next() {
		sale := &domain.Sale{}
		if err := rows.Scan(&sale.ID, &sale.SaleDate, &sale.TotalAmount, &sale.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	for _, sale := range sales {
		items, err := r.itemsForSale(ctx, sale.ID)
		if err != nil {
			return nil, err
		}
		sale.Items = items
	}

	return sales, nil
}

// DeleteAll removes every sale and sale line, lines first to respect the
// foreign key; this is the sales-history factory reset.
func (r *saleRepository) DeleteAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items`); err != nil {
		return fmt.Errorf("failed to reset sale items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sales`); err != nil {
		return fmt.Errorf("failed to reset sales: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sales reset: %w", err)
	}

	return nil
}

type saleLine struct {
	productID uuid.UUID
	quantity  int
}

// lineQuantities reads the product/quantity pairs of a sale's lines inside
// the current transaction.
func (r *saleRepository) lineQuantities(ctx context.Context, tx *sql.Tx, saleID uuid.UUID) ([]saleLine, error) {
	rows, err := tx.QueryContext(ctx, `SELECT product_id, quantity FROM sale_items WHERE sale_id = $1`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to read sale items: %w", err)
	}
	defer rows.Close()

	lines := []saleLine{}
	for rows.Next() {
		var line saleLine
		if err := rows.Scan(&line.productID, &line.quantity); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	return lines, nil
}

func (r *saleRepository) insertItems(ctx context.Context, tx *sql.Tx, saleID uuid.UUID, items []domain.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, item := range items {
		_, err := tx.ExecContext(
			ctx,
			query,
			item.ID,
			saleID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create sale item: %w", err)
		}
	}

	return nil
}

// deductStock applies a sale line's effect to the product counters. No
// oversell check here: the UI enforces that softly, and stock may run
// negative until corrected by a restock.
func (r *saleRepository) deductStock(ctx context.Context, tx *sql.Tx, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET current_stock = current_stock - $2,
		    total_units_sold = total_units_sold + $2
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to deduct stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// restoreStock reverses a sale line's effect. Sold units are floored at zero
// to tolerate prior manual adjustments to the counter.
func (r *saleRepository) restoreStock(ctx context.Context, tx *sql.Tx, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET current_stock = current_stock + $2,
		    total_units_sold = GREATEST(total_units_sold - $2, 0)
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *saleRepository) itemsForSale(ctx context.Context, saleID uuid.UUID) ([]domain.SaleItem, error) {
	query := `
		SELECT si.id, si.sale_id, si.product_id, COALESCE(p.name, 'Unknown'),
		       si.quantity, si.unit_price, si.subtotal, si.created_at
		FROM sale_items si
		LEFT JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = $1
		ORDER BY si.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	defer rows.Close()

	items := []domain.SaleItem{}
	for rows.Next() {
		var item domain.SaleItem
		err := rows.Scan(
			&item.ID,
			&item.SaleID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	return items, nil
}
