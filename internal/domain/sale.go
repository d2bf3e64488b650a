package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a completed point-of-sale transaction. TotalAmount always equals
// the sum of its item subtotals after a successful write.
type Sale struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	SaleDate    time.Time       `json:"sale_date" db:"sale_date"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Items       []SaleItem      `json:"items"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// SaleItem is one line of a sale. UnitPrice is captured at sale time and is
// deliberately decoupled from the product's current selling price.
type SaleItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	SaleID      uuid.UUID       `json:"sale_id" db:"sale_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
