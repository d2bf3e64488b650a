package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shortie-pos/internal/domain"
	"shortie-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// RecentSalesLimit caps the transaction history view
	RecentSalesLimit = 20
)

var (
	ErrEmptySale         = errors.New("sale must contain at least one line")
	ErrInvalidQuantity   = errors.New("sale line quantity must be positive")
	ErrNegativeUnitPrice = errors.New("sale line unit price cannot be negative")
	ErrTotalMismatch     = errors.New("sale total does not match the sum of line subtotals")
)

// SaleLineInput is one cart line as submitted by the point-of-sale screen.
// The unit price is the price captured at sale time, not looked up from the
// product, so later price changes never rewrite history.
type SaleLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// SaleService is the sale reconciliation engine: it records, edits, and
// voids sales while keeping product stock and sold-unit counters consistent
// with the set of currently recorded sale lines. Subtotals and totals are
// recomputed here from the submitted lines and verified against the caller's
// figures rather than trusted, so a buggy client cannot silently corrupt the
// counters.
type SaleService interface {
	RecordSale(ctx context.Context, lines []SaleLineInput, total decimal.Decimal) (*domain.Sale, error)
	EditSale(ctx context.Context, saleID uuid.UUID, newLines []SaleLineInput, newTotal decimal.Decimal) (*domain.Sale, error)
	VoidSale(ctx context.Context, saleID uuid.UUID) error
	GetSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error)
	RecentSales(ctx context.Context) ([]*domain.Sale, error)
	ResetSales(ctx context.Context) error
}

type saleService struct {
	saleRepo repository.SaleRepository
}

// NewSaleService creates a new instance of SaleService
func NewSaleService(saleRepo repository.SaleRepository) SaleService {
	return &saleService{saleRepo: saleRepo}
}

// RecordSale validates and persists a new sale. The sale header, its lines,
// and the stock deductions for every line are written as one unit; for each
// line the referenced product loses Quantity stock and gains Quantity sold
// units.
func (s *saleService) RecordSale(ctx context.Context, lines []SaleLineInput, total decimal.Decimal) (*domain.Sale, error) {
	now := time.Now()
	saleID := uuid.New()

	items, computedTotal, err := buildSaleItems(saleID, lines, now)
	if err != nil {
		return nil, err
	}
	if !computedTotal.Equal(total) {
		return nil, ErrTotalMismatch
	}

	sale := &domain.Sale{
		ID:          saleID,
		SaleDate:    now,
		TotalAmount: total,
		Items:       items,
		CreatedAt:   now,
	}

	if err := s.saleRepo.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	return sale, nil
}

// EditSale replaces the lines of an existing sale, preserving its identity.
// The stock effect of the original lines is reversed and the new lines'
// effect applied, so a product kept across the edit nets out to the quantity
// difference while products added or removed are deducted or restored in
// full.
func (s *saleService) EditSale(ctx context.Context, saleID uuid.UUID, newLines []SaleLineInput, newTotal decimal.Decimal) (*domain.Sale, error) {
	now := time.Now()

	items, computedTotal, err := buildSaleItems(saleID, newLines, now)
	if err != nil {
		return nil, err
	}
	if !computedTotal.Equal(newTotal) {
		return nil, ErrTotalMismatch
	}

	sale := &domain.Sale{
		ID:          saleID,
		TotalAmount: newTotal,
		Items:       items,
	}

	if err := s.saleRepo.Replace(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to edit sale: %w", err)
	}

	return s.saleRepo.FindByID(ctx, saleID)
}

// VoidSale cancels a recorded sale, restoring stock and reversing sold-unit
// counters for every line before removing the sale. Voiding is terminal: a
// voided sale cannot be voided or edited again.
func (s *saleService) VoidSale(ctx context.Context, saleID uuid.UUID) error {
	if err := s.saleRepo.Void(ctx, saleID); err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			return err
		}
		return fmt.Errorf("failed to void sale: %w", err)
	}
	return nil
}

// GetSale retrieves a single sale with its lines
func (s *saleService) GetSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error) {
	return s.saleRepo.FindByID(ctx, saleID)
}

// RecentSales retrieves the latest sales for the transaction history view
func (s *saleService) RecentSales(ctx context.Context) ([]*domain.Sale, error) {
	return s.saleRepo.ListRecent(ctx, RecentSalesLimit)
}

// ResetSales wipes the entire sales history. Stock counters are left as they
// are; this is a bookkeeping reset, not a mass void.
func (s *saleService) ResetSales(ctx context.Context) error {
	return s.saleRepo.DeleteAll(ctx)
}

// buildSaleItems validates the submitted lines and materializes them with
// recomputed subtotals, returning the sum for verification against the
// caller's total.
func buildSaleItems(saleID uuid.UUID, lines []SaleLineInput, now time.Time) ([]domain.SaleItem, decimal.Decimal, error) {
	if len(lines) == 0 {
		return nil, decimal.Zero, ErrEmptySale
	}

	items := make([]domain.SaleItem, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, decimal.Zero, ErrInvalidQuantity
		}
		if line.UnitPrice.IsNegative() {
			return nil, decimal.Zero, ErrNegativeUnitPrice
		}

		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, domain.SaleItem{
			ID:        uuid.New(),
			SaleID:    saleID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  subtotal,
			CreatedAt: now,
		})
		total = total.Add(subtotal)
	}

	return items, total, nil
}
