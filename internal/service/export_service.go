package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"shortie-pos/internal/repository"
)

// ExportService renders inventory and sales data as CSV for download.
type ExportService interface {
	InventoryCSV(ctx context.Context) ([]byte, error)
	SalesCSV(ctx context.Context) ([]byte, error)
}

type exportService struct {
	productRepo repository.ProductRepository
	reportRepo  repository.ReportRepository
}

// NewExportService creates a new instance of ExportService
func NewExportService(productRepo repository.ProductRepository, reportRepo repository.ReportRepository) ExportService {
	return &exportService{
		productRepo: productRepo,
		reportRepo:  reportRepo,
	}
}

// InventoryCSV exports the product catalog with current counters.
func (s *exportService) InventoryCSV(ctx context.Context) ([]byte, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export inventory: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Name", "Description", "Selling Price", "Cost (Batch)", "Units (Batch)", "Current Stock", "Total Sold"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, p := range products {
		record := []string{
			p.Name,
			p.Description,
			p.UnitSellingPrice.StringFixed(2),
			p.CostPerBatch.StringFixed(2),
			strconv.Itoa(p.UnitsPerBatch),
			strconv.Itoa(p.CurrentStock),
			strconv.Itoa(p.TotalUnitsSold),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// SalesCSV exports the sales history flattened to one row per sale line.
func (s *exportService) SalesCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.reportRepo.SalesExportRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export sales: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Sale Date", "Product", "Quantity", "Unit Price", "Subtotal", "Order Total", "Sale ID"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.SaleDate.Format("2006-01-02 15:04:05"),
			row.ProductName,
			strconv.Itoa(row.Quantity),
			row.UnitPrice.StringFixed(2),
			row.Subtotal.StringFixed(2),
			row.OrderTotal.StringFixed(2),
			row.SaleID.String(),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}
