package transport

import (
	"errors"
	"net/http"

	"shortie-pos/internal/middleware"
	"shortie-pos/internal/repository"
	"shortie-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleLineRequest is one cart line in a record or edit request
type SaleLineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// RecordSaleRequest represents the checkout payload
type RecordSaleRequest struct {
	Items []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
	Total decimal.Decimal   `json:"total"`
}

// EditSaleRequest represents the sale edit payload
type EditSaleRequest struct {
	Items []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
	Total decimal.Decimal   `json:"total"`
}

// SaleHandler handles HTTP requests for point-of-sale operations
type SaleHandler struct {
	saleService service.SaleService
	logger      *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService service.SaleService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		logger:      logger,
	}
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sales", func(r chi.Router) {
		r.Post("/", h.RecordSale)
		r.Get("/recent", h.RecentSales)
		r.Get("/{id}", h.GetSale)
		r.Put("/{id}", h.EditSale)
		r.Delete("/{id}", h.VoidSale)
	})
}

// RecordSale handles checkout
func (h *SaleHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Record sale validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines, err := toSaleLines(req.Items)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	sale, err := h.saleService.RecordSale(r.Context(), lines, req.Total)
	if err != nil {
		h.respondSaleError(w, "Failed to record sale", err)
		return
	}

	h.logger.Info("Sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.Int("lines", len(sale.Items)),
		zap.String("total", sale.TotalAmount.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

// EditSale handles replacing the lines of an existing sale
func (h *SaleHandler) EditSale(w http.ResponseWriter, r *http.Request) {
	saleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	var req EditSaleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Edit sale validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines, err := toSaleLines(req.Items)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	sale, err := h.saleService.EditSale(r.Context(), saleID, lines, req.Total)
	if err != nil {
		h.respondSaleError(w, "Failed to edit sale", err)
		return
	}

	h.logger.Info("Sale edited", zap.String("sale_id", saleID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

// VoidSale handles cancelling a recorded sale
func (h *SaleHandler) VoidSale(w http.ResponseWriter, r *http.Request) {
	saleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	if err := h.saleService.VoidSale(r.Context(), saleID); err != nil {
		h.respondSaleError(w, "Failed to void sale", err)
		return
	}

	h.logger.Info("Sale voided", zap.String("sale_id", saleID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// GetSale retrieves a single sale
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	saleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	sale, err := h.saleService.GetSale(r.Context(), saleID)
	if err != nil {
		h.respondSaleError(w, "Failed to get sale", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

// RecentSales retrieves the transaction history
func (h *SaleHandler) RecentSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.saleService.RecentSales(r.Context())
	if err != nil {
		h.logger.Error("Failed to list recent sales", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list recent sales")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sales)
}

func (h *SaleHandler) respondSaleError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrEmptySale),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrNegativeUnitPrice),
		errors.Is(err, service.ErrTotalMismatch):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrSaleNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "sale not found")
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func toSaleLines(items []SaleLineRequest) ([]service.SaleLineInput, error) {
	lines := make([]service.SaleLineInput, 0, len(items))
	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, service.SaleLineInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return lines, nil
}
