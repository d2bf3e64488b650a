package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shortie-pos/internal/domain"
	"shortie-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	existing, ok := m.products[product.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	existing.Name = product.Name
	existing.Description = product.Description
	existing.UnitSellingPrice = product.UnitSellingPrice
	existing.CostPerBatch = product.CostPerBatch
	existing.UnitsPerBatch = product.UnitsPerBatch
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) DeleteAll(ctx context.Context) error {
	m.products = make(map[uuid.UUID]*domain.Product)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		products = append(products, p)
	}
	return products, nil
}

// mockStockPurchaseRepository applies the purchase's units to the product's
// stock the same way the real repository does.
type mockStockPurchaseRepository struct {
	productRepo *mockProductRepository
	purchases   []*domain.StockPurchase
}

func newMockStockPurchaseRepository(productRepo *mockProductRepository) *mockStockPurchaseRepository {
	return &mockStockPurchaseRepository{productRepo: productRepo}
}

func (m *mockStockPurchaseRepository) Create(ctx context.Context, purchase *domain.StockPurchase) error {
	product, ok := m.productRepo.products[purchase.ProductID]
	if !ok {
		return repository.ErrProductNotFound
	}
	product.CurrentStock += purchase.UnitsAdded
	m.purchases = append(m.purchases, purchase)
	return nil
}

func (m *mockStockPurchaseRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.StockPurchase, error) {
	purchases := []*domain.StockPurchase{}
	for i := len(m.purchases) - 1; i >= 0; i-- {
		if m.purchases[i].ProductID == productID {
			purchases = append(purchases, m.purchases[i])
		}
	}
	return purchases, nil
}

type mockReportRepository struct {
	metrics    []*domain.ProductMetrics
	summary    *domain.SalesSummary
	exportRows []*domain.SaleExportRow
}

func (m *mockReportRepository) ProductMetrics(ctx context.Context) ([]*domain.ProductMetrics, error) {
	return m.metrics, nil
}

func (m *mockReportRepository) SalesSummary(ctx context.Context) (*domain.SalesSummary, error) {
	return m.summary, nil
}

func (m *mockReportRepository) SalesExportRows(ctx context.Context) ([]*domain.SaleExportRow, error) {
	return m.exportRows, nil
}

func newInventoryFixture() (*mockProductRepository, *mockStockPurchaseRepository, InventoryService) {
	productRepo := newMockProductRepository()
	stockRepo := newMockStockPurchaseRepository(productRepo)
	svc := NewInventoryService(productRepo, stockRepo, &mockReportRepository{})
	return productRepo, stockRepo, svc
}

func TestCreateProductStartsWithZeroCounters(t *testing.T) {
	_, _, svc := newInventoryFixture()
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, ProductInput{
		Name:             "  Chips  ",
		Description:      "salted",
		UnitSellingPrice: decimal.NewFromInt(12),
		CostPerBatch:     decimal.NewFromInt(100),
		UnitsPerBatch:    24,
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	if product.Name != "Chips" {
		t.Errorf("name not trimmed: %q", product.Name)
	}
	if product.CurrentStock != 0 || product.TotalUnitsSold != 0 {
		t.Errorf("new product counters not zero: stock %d sold %d", product.CurrentStock, product.TotalUnitsSold)
	}
}

func TestCreateProductValidation(t *testing.T) {
	_, _, svc := newInventoryFixture()
	ctx := context.Background()

	valid := ProductInput{
		Name:             "Chips",
		UnitSellingPrice: decimal.NewFromInt(12),
		CostPerBatch:     decimal.NewFromInt(100),
		UnitsPerBatch:    24,
	}

	cases := []struct {
		name    string
		mutate  func(ProductInput) ProductInput
		wantErr error
	}{
		{"blank name", func(in ProductInput) ProductInput { in.Name = "   "; return in }, ErrProductNameRequired},
		{"negative price", func(in ProductInput) ProductInput { in.UnitSellingPrice = decimal.NewFromInt(-1); return in }, ErrNegativePrice},
		{"negative batch cost", func(in ProductInput) ProductInput { in.CostPerBatch = decimal.NewFromInt(-1); return in }, ErrNegativeBatchCost},
		{"zero units per batch", func(in ProductInput) ProductInput { in.UnitsPerBatch = 0; return in }, ErrInvalidUnitsPerBatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tc.mutate(valid))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestUpdateProductPreservesCounters(t *testing.T) {
	productRepo, _, svc := newInventoryFixture()
	ctx := context.Background()

	now := time.Now()
	product := &domain.Product{
		ID:               uuid.New(),
		Name:             "Chips",
		UnitSellingPrice: decimal.NewFromInt(12),
		CostPerBatch:     decimal.NewFromInt(100),
		UnitsPerBatch:    24,
		CurrentStock:     7,
		TotalUnitsSold:   3,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	productRepo.products[product.ID] = product

	updated, err := svc.UpdateProduct(ctx, product.ID, ProductInput{
		Name:             "Chips XL",
		UnitSellingPrice: decimal.NewFromInt(15),
		CostPerBatch:     decimal.NewFromInt(120),
		UnitsPerBatch:    12,
	})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}

	if updated.Name != "Chips XL" || updated.UnitsPerBatch != 12 {
		t.Errorf("catalog fields not updated: %+v", updated)
	}
	if updated.CurrentStock != 7 || updated.TotalUnitsSold != 3 {
		t.Errorf("counters changed by catalog update: stock %d sold %d", updated.CurrentStock, updated.TotalUnitsSold)
	}
}

func TestProperty_RestockDerivesUnitsAndCost(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("units added and total cost come from stored batch size", prop.ForAll(
		func(batches int, unitsPerBatch int, costCents int, initialStock int, initialSold int) bool {
			productRepo, _, svc := newInventoryFixture()
			ctx := context.Background()

			now := time.Now()
			product := &domain.Product{
				ID:               uuid.New(),
				Name:             "Chips",
				UnitSellingPrice: decimal.NewFromInt(12),
				CostPerBatch:     decimal.NewFromInt(100),
				UnitsPerBatch:    unitsPerBatch,
				CurrentStock:     initialStock,
				TotalUnitsSold:   initialSold,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			productRepo.products[product.ID] = product

			costPerBatch := decimal.NewFromInt(int64(costCents)).Div(decimal.NewFromInt(100))
			purchase, err := svc.Restock(ctx, product.ID, batches, costPerBatch, "")
			if err != nil {
				t.Logf("FAIL: Restock returned error: %v", err)
				return false
			}

			wantUnits := batches * unitsPerBatch
			wantCost := costPerBatch.Mul(decimal.NewFromInt(int64(batches)))
			if purchase.UnitsAdded != wantUnits {
				t.Logf("FAIL: units added %d, want %d", purchase.UnitsAdded, wantUnits)
				return false
			}
			if !purchase.TotalCost.Equal(wantCost) {
				t.Logf("FAIL: total cost %s, want %s", purchase.TotalCost, wantCost)
				return false
			}
			if product.CurrentStock != initialStock+wantUnits {
				t.Logf("FAIL: stock %d, want %d", product.CurrentStock, initialStock+wantUnits)
				return false
			}
			if product.TotalUnitsSold != initialSold {
				t.Logf("FAIL: restock touched sold units: %d", product.TotalUnitsSold)
				return false
			}
			return true
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 100),
		gen.IntRange(0, 100000),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

func TestRestockChipsScenario(t *testing.T) {
	productRepo, stockRepo, svc := newInventoryFixture()
	ctx := context.Background()

	now := time.Now()
	product := &domain.Product{
		ID:            uuid.New(),
		Name:          "Chips",
		UnitsPerBatch: 24,
		CurrentStock:  5,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	productRepo.products[product.ID] = product

	purchase, err := svc.Restock(ctx, product.ID, 3, decimal.NewFromInt(10), "weekly delivery")
	if err != nil {
		t.Fatalf("Restock failed: %v", err)
	}

	if purchase.UnitsAdded != 72 {
		t.Errorf("units added %d, want 72", purchase.UnitsAdded)
	}
	if !purchase.TotalCost.Equal(decimal.NewFromInt(30)) {
		t.Errorf("total cost %s, want 30", purchase.TotalCost)
	}
	if product.CurrentStock != 77 {
		t.Errorf("stock %d, want 77", product.CurrentStock)
	}
	if purchase.Notes == nil || *purchase.Notes != "weekly delivery" {
		t.Errorf("notes not recorded: %v", purchase.Notes)
	}

	history, err := svc.RestockHistory(ctx, product.ID)
	if err != nil {
		t.Fatalf("RestockHistory failed: %v", err)
	}
	if len(history) != 1 || history[0].ID != purchase.ID {
		t.Errorf("restock history missing the purchase")
	}
	_ = stockRepo
}

func TestRestockValidation(t *testing.T) {
	productRepo, _, svc := newInventoryFixture()
	ctx := context.Background()

	now := time.Now()
	product := &domain.Product{
		ID:            uuid.New(),
		Name:          "Chips",
		UnitsPerBatch: 24,
		CurrentStock:  5,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	productRepo.products[product.ID] = product

	t.Run("zero batches rejected", func(t *testing.T) {
		_, err := svc.Restock(ctx, product.ID, 0, decimal.NewFromInt(10), "")
		if !errors.Is(err, ErrInvalidBatches) {
			t.Errorf("expected ErrInvalidBatches, got %v", err)
		}
	})

	t.Run("negative cost rejected", func(t *testing.T) {
		_, err := svc.Restock(ctx, product.ID, 1, decimal.NewFromInt(-5), "")
		if !errors.Is(err, ErrNegativeBatchCost) {
			t.Errorf("expected ErrNegativeBatchCost, got %v", err)
		}
	})

	t.Run("unknown product rejected", func(t *testing.T) {
		_, err := svc.Restock(ctx, uuid.New(), 1, decimal.NewFromInt(10), "")
		if !errors.Is(err, repository.ErrProductNotFound) {
			t.Errorf("expected ErrProductNotFound, got %v", err)
		}
	})

	if product.CurrentStock != 5 {
		t.Errorf("stock changed by rejected restocks: %d", product.CurrentStock)
	}

	t.Run("blank notes stored as null", func(t *testing.T) {
		purchase, err := svc.Restock(ctx, product.ID, 1, decimal.NewFromInt(10), "   ")
		if err != nil {
			t.Fatalf("Restock failed: %v", err)
		}
		if purchase.Notes != nil {
			t.Errorf("blank notes should be nil, got %q", *purchase.Notes)
		}
	})
}

func TestResetInventoryClearsCatalog(t *testing.T) {
	productRepo, _, svc := newInventoryFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateProduct(ctx, ProductInput{
			Name:             uuid.NewString(),
			UnitSellingPrice: decimal.NewFromInt(1),
			CostPerBatch:     decimal.NewFromInt(1),
			UnitsPerBatch:    1,
		}); err != nil {
			t.Fatalf("CreateProduct failed: %v", err)
		}
	}

	if err := svc.ResetInventory(ctx); err != nil {
		t.Fatalf("ResetInventory failed: %v", err)
	}
	if len(productRepo.products) != 0 {
		t.Errorf("catalog not emptied: %d products remain", len(productRepo.products))
	}
}
