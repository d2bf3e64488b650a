package transport

import (
	"fmt"
	"net/http"
	"time"

	"shortie-pos/internal/middleware"
	"shortie-pos/internal/repository"
	"shortie-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportHandler handles HTTP requests for reports, CSV export, and the
// destructive settings actions
type ReportHandler struct {
	reportRepo       repository.ReportRepository
	exportService    service.ExportService
	saleService      service.SaleService
	inventoryService service.InventoryService
	logger           *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(
	reportRepo repository.ReportRepository,
	exportService service.ExportService,
	saleService service.SaleService,
	inventoryService service.InventoryService,
	logger *zap.Logger,
) *ReportHandler {
	return &ReportHandler{
		reportRepo:       reportRepo,
		exportService:    exportService,
		saleService:      saleService,
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// RegisterRoutes registers report, export, and settings routes
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/reports", h.SalesReport)
	r.Route("/api/export", func(r chi.Router) {
		r.Get("/inventory", h.ExportInventory)
		r.Get("/sales", h.ExportSales)
	})
	r.Route("/api/settings", func(r chi.Router) {
		r.Post("/reset-sales", h.ResetSales)
		r.Post("/reset-inventory", h.ResetInventory)
	})
}

// SalesReport returns all-time revenue, order count, and best sellers
func (h *ReportHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reportRepo.SalesSummary(r.Context())
	if err != nil {
		h.logger.Error("Failed to build sales report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build sales report")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

// ExportInventory streams the catalog as a CSV attachment
func (h *ReportHandler) ExportInventory(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportService.InventoryCSV(r.Context())
	if err != nil {
		h.logger.Error("Failed to export inventory", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to export inventory")
		return
	}

	h.writeCSV(w, fmt.Sprintf("shortie_inventory_%s.csv", time.Now().Format("2006-01-02")), data)
}

// ExportSales streams the flattened sales history as a CSV attachment
func (h *ReportHandler) ExportSales(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportService.SalesCSV(r.Context())
	if err != nil {
		h.logger.Error("Failed to export sales", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to export sales")
		return
	}

	h.writeCSV(w, fmt.Sprintf("shortie_sales_%s.csv", time.Now().Format("2006-01-02")), data)
}

// ResetSales wipes the sales history
func (h *ReportHandler) ResetSales(w http.ResponseWriter, r *http.Request) {
	if err := h.saleService.ResetSales(r.Context()); err != nil {
		h.logger.Error("Failed to reset sales", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to reset sales")
		return
	}

	h.logger.Warn("Sales history reset")
	w.WriteHeader(http.StatusNoContent)
}

// ResetInventory wipes the product catalog
func (h *ReportHandler) ResetInventory(w http.ResponseWriter, r *http.Request) {
	if err := h.inventoryService.ResetInventory(r.Context()); err != nil {
		h.logger.Error("Failed to reset inventory", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to reset inventory")
		return
	}

	h.logger.Warn("Inventory reset")
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReportHandler) writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
