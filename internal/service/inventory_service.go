package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shortie-pos/internal/domain"
	"shortie-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNameRequired  = errors.New("product name is required")
	ErrNegativePrice        = errors.New("selling price cannot be negative")
	ErrNegativeBatchCost    = errors.New("cost per batch cannot be negative")
	ErrInvalidUnitsPerBatch = errors.New("units per batch must be at least 1")
	ErrInvalidBatches       = errors.New("batches purchased must be at least 1")
)

// ProductInput carries the catalog fields of a product create or update.
type ProductInput struct {
	Name             string
	Description      string
	UnitSellingPrice decimal.Decimal
	CostPerBatch     decimal.Decimal
	UnitsPerBatch    int
}

// InventoryService manages the product catalog and restocking. Restock
// derives units added and total cost from stored product data and the batch
// count; callers never supply derived figures.
type InventoryService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	Restock(ctx context.Context, productID uuid.UUID, batches int, costPerBatch decimal.Decimal, notes string) (*domain.StockPurchase, error)
	RestockHistory(ctx context.Context, productID uuid.UUID) ([]*domain.StockPurchase, error)
	ProductMetrics(ctx context.Context) ([]*domain.ProductMetrics, error)
	ResetInventory(ctx context.Context) error
}

type inventoryService struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockPurchaseRepository
	reportRepo  repository.ReportRepository
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(
	productRepo repository.ProductRepository,
	stockRepo repository.StockPurchaseRepository,
	reportRepo repository.ReportRepository,
) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		stockRepo:   stockRepo,
		reportRepo:  reportRepo,
	}
}

// CreateProduct adds a catalog entry. New products start with zero stock and
// zero units sold; stock only arrives through restocking.
func (s *inventoryService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		UnitSellingPrice: input.UnitSellingPrice,
		CostPerBatch:     input.CostPerBatch,
		UnitsPerBatch:    input.UnitsPerBatch,
		CurrentStock:     0,
		TotalUnitsSold:   0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// UpdateProduct rewrites a product's catalog fields. Stock and sold-unit
// counters cannot be edited here.
func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.UnitSellingPrice = input.UnitSellingPrice
	product.CostPerBatch = input.CostPerBatch
	product.UnitsPerBatch = input.UnitsPerBatch

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a product and, by cascade, its sale lines and
// restock history
func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// GetProduct retrieves a product by ID
func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// ListProducts retrieves the catalog ordered by name
func (s *inventoryService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.List(ctx)
}

// Restock appends an immutable stock purchase and raises the product's stock.
// Units added are computed from the product's stored batch size and total
// cost from the batch count, never accepted from the caller. Sold-unit
// counters are untouched.
func (s *inventoryService) Restock(ctx context.Context, productID uuid.UUID, batches int, costPerBatch decimal.Decimal, notes string) (*domain.StockPurchase, error) {
	if batches < 1 {
		return nil, ErrInvalidBatches
	}
	if costPerBatch.IsNegative() {
		return nil, ErrNegativeBatchCost
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	purchase := &domain.StockPurchase{
		ID:               uuid.New(),
		ProductID:        product.ID,
		BatchesPurchased: batches,
		CostPerBatch:     costPerBatch,
		TotalCost:        costPerBatch.Mul(decimal.NewFromInt(int64(batches))),
		UnitsAdded:       batches * product.UnitsPerBatch,
		CreatedAt:        time.Now(),
	}
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		purchase.Notes = &trimmed
	}

	if err := s.stockRepo.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to restock: %w", err)
	}

	return purchase, nil
}

// RestockHistory retrieves a product's restock events, newest first
func (s *inventoryService) RestockHistory(ctx context.Context, productID uuid.UUID) ([]*domain.StockPurchase, error) {
	return s.stockRepo.ListByProduct(ctx, productID)
}

// ProductMetrics retrieves per-product profitability figures
func (s *inventoryService) ProductMetrics(ctx context.Context) ([]*domain.ProductMetrics, error) {
	return s.reportRepo.ProductMetrics(ctx)
}

// ResetInventory wipes the catalog and everything hanging off it
func (s *inventoryService) ResetInventory(ctx context.Context) error {
	return s.productRepo.DeleteAll(ctx)
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrProductNameRequired
	}
	if input.UnitSellingPrice.IsNegative() {
		return ErrNegativePrice
	}
	if input.CostPerBatch.IsNegative() {
		return ErrNegativeBatchCost
	}
	if input.UnitsPerBatch < 1 {
		return ErrInvalidUnitsPerBatch
	}
	return nil
}
