package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents an item sold at the stall. Stock is counted in
// individual units; restocking happens in batches of UnitsPerBatch units.
type Product struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Description      string          `json:"description" db:"description"`
	UnitSellingPrice decimal.Decimal `json:"unit_selling_price" db:"unit_selling_price"`
	CostPerBatch     decimal.Decimal `json:"cost_per_batch" db:"cost_per_batch"`
	UnitsPerBatch    int             `json:"units_per_batch" db:"units_per_batch"`
	CurrentStock     int             `json:"current_stock" db:"current_stock"`
	TotalUnitsSold   int             `json:"total_units_sold" db:"total_units_sold"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// StockPurchase is an append-only restock record. It is never mutated
// after creation; the product's stock counter carries the running total.
type StockPurchase struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	ProductID        uuid.UUID       `json:"product_id" db:"product_id"`
	BatchesPurchased int             `json:"batches_purchased" db:"batches_purchased"`
	CostPerBatch     decimal.Decimal `json:"cost_per_batch" db:"cost_per_batch"`
	TotalCost        decimal.Decimal `json:"total_cost" db:"total_cost"`
	UnitsAdded       int             `json:"units_added" db:"units_added"`
	Notes            *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// ProductMetrics is a product enriched with all-time profitability figures
// derived from its sale lines and stock purchases.
type ProductMetrics struct {
	Product
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Profit       decimal.Decimal `json:"profit"`
	ProfitMargin float64         `json:"profit_margin"`
}
