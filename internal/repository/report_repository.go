package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shortie-pos/internal/domain"

	"github.com/shopspring/decimal"
)

// ReportRepository answers the read-only aggregate queries behind the
// dashboard, the sales report, and the CSV exports.
type ReportRepository interface {
	ProductMetrics(ctx context.Context) ([]*domain.ProductMetrics, error)
	SalesSummary(ctx context.Context) (*domain.SalesSummary, error)
	SalesExportRows(ctx context.Context) ([]*domain.SaleExportRow, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

// ProductMetrics returns every product with its all-time revenue (sum of
// sale line subtotals), cost (sum of stock purchase totals), profit, and
// margin percentage.
func (r *reportRepository) ProductMetrics(ctx context.Context) ([]*domain.ProductMetrics, error) {
	query := `
		SELECT p.id, p.name, p.description, p.unit_selling_price, p.cost_per_batch,
		       p.units_per_batch, p.current_stock, p.total_units_sold, p.created_at, p.updated_at,
		       COALESCE(s.revenue, 0) AS total_revenue,
		       COALESCE(c.total_cost, 0) AS total_cost
		FROM products p
		LEFT JOIN (
			SELECT product_id, SUM(subtotal) AS revenue
			FROM sale_items
			GROUP BY product_id
		) s ON s.product_id = p.id
		LEFT JOIN (
			SELECT product_id, SUM(total_cost) AS total_cost
			FROM stock_purchases
			GROUP BY product_id
		) c ON c.product_id = p.id
		ORDER BY p.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query product metrics: %w", err)
	}
	defer rows.Close()

	metrics := []*domain.ProductMetrics{}
	for rows.Next() {
		m := &domain.ProductMetrics{}
		err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.Description,
			&m.UnitSellingPrice,
			&m.CostPerBatch,
			&m.UnitsPerBatch,
			&m.CurrentStock,
			&m.TotalUnitsSold,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.TotalRevenue,
			&m.TotalCost,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product metrics: %w", err)
		}

		m.Profit = m.TotalRevenue.Sub(m.TotalCost)
		if m.TotalRevenue.IsPositive() {
			margin, _ := m.Profit.Div(m.TotalRevenue).Mul(decimal.NewFromInt(100)).Float64()
			m.ProfitMargin = margin
		}

		metrics = append(metrics, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product metrics: %w", err)
	}

	return metrics, nil
}

// SalesSummary returns all-time revenue, the order count, and the five
// best-selling products by units.
func (r *reportRepository) SalesSummary(ctx context.Context) (*domain.SalesSummary, error) {
	summary := &domain.SalesSummary{TopSelling: []domain.TopSeller{}}

	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM sales`).Scan(&summary.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate revenue: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&summary.TotalOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `
		SELECT p.name, SUM(si.quantity) AS sold, SUM(si.subtotal) AS revenue
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		GROUP BY p.name
		ORDER BY sold DESC
		LIMIT 5
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query top sellers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var top domain.TopSeller
		if err := rows.Scan(&top.ProductName, &top.UnitsSold, &top.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan top seller: %w", err)
		}
		summary.TopSelling = append(summary.TopSelling, top)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top sellers: %w", err)
	}

	return summary, nil
}

// SalesExportRows returns every sale line flattened with its product name
// and order total, newest sale first.
func (r *reportRepository) SalesExportRows(ctx context.Context) ([]*domain.SaleExportRow, error) {
	query := `
		SELECT s.sale_date, COALESCE(p.name, 'Unknown'), si.quantity,
		       si.unit_price, si.subtotal, s.total_amount, s.id
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		LEFT JOIN products p ON p.id = si.product_id
		ORDER BY s.sale_date DESC, si.created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales export: %w", err)
	}
	defer rows.Close()

	export := []*domain.SaleExportRow{}
	for rows.Next() {
		row := &domain.SaleExportRow{}
		err := rows.Scan(
			&row.SaleDate,
			&row.ProductName,
			&row.Quantity,
			&row.UnitPrice,
			&row.Subtotal,
			&row.OrderTotal,
			&row.SaleID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales export row: %w", err)
		}
		export = append(export, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales export: %w", err)
	}

	return export, nil
}
