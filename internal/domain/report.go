package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesSummary is the all-time sales report shown on the dashboard.
type SalesSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalOrders  int64           `json:"total_orders"`
	TopSelling   []TopSeller     `json:"top_selling"`
}

// TopSeller is one row of the best-sellers table.
type TopSeller struct {
	ProductName string          `json:"product_name"`
	UnitsSold   int             `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// SaleExportRow is one flattened sale line for the sales CSV export.
type SaleExportRow struct {
	SaleDate    time.Time
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	OrderTotal  decimal.Decimal
	SaleID      uuid.UUID
}
