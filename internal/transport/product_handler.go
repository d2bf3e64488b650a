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

// ProductRequest represents a product create or update payload
type ProductRequest struct {
	Name             string          `json:"name" validate:"required"`
	Description      string          `json:"description"`
	UnitSellingPrice decimal.Decimal `json:"unit_selling_price"`
	CostPerBatch     decimal.Decimal `json:"cost_per_batch"`
	UnitsPerBatch    int             `json:"units_per_batch" validate:"required,gte=1"`
}

// RestockRequest represents a restock payload. Units added and total cost
// are derived server-side and are not part of the request.
type RestockRequest struct {
	Batches      int             `json:"batches" validate:"required,gte=1"`
	CostPerBatch decimal.Decimal `json:"cost_per_batch"`
	Notes        string          `json:"notes"`
}

// ProductHandler handles HTTP requests for catalog and restock operations
type ProductHandler struct {
	inventoryService service.InventoryService
	logger           *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(inventoryService service.InventoryService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Post("/", h.CreateProduct)
		r.Get("/", h.ListProducts)
		r.Get("/metrics", h.ProductMetrics)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
		r.Post("/{id}/restock", h.Restock)
		r.Get("/{id}/restocks", h.RestockHistory)
	})
}

// CreateProduct handles adding a product to the catalog
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.inventoryService.CreateProduct(r.Context(), toProductInput(req))
	if err != nil {
		h.respondInventoryError(w, "Failed to create product", err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles rewriting a product's catalog fields
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.inventoryService.UpdateProduct(r.Context(), id, toProductInput(req))
	if err != nil {
		h.respondInventoryError(w, "Failed to update product", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles removing a product
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.inventoryService.DeleteProduct(r.Context(), id); err != nil {
		h.respondInventoryError(w, "Failed to delete product", err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// GetProduct retrieves a single product
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.inventoryService.GetProduct(r.Context(), id)
	if err != nil {
		h.respondInventoryError(w, "Failed to get product", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ListProducts retrieves the catalog
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.inventoryService.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// ProductMetrics retrieves per-product profitability figures
func (h *ProductHandler) ProductMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.inventoryService.ProductMetrics(r.Context())
	if err != nil {
		h.logger.Error("Failed to get product metrics", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product metrics")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, metrics)
}

// Restock handles adding stock to a product
func (h *ProductHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req RestockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Restock validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	purchase, err := h.inventoryService.Restock(r.Context(), id, req.Batches, req.CostPerBatch, req.Notes)
	if err != nil {
		h.respondInventoryError(w, "Failed to restock", err)
		return
	}

	h.logger.Info("Product restocked",
		zap.String("product_id", id.String()),
		zap.Int("batches", purchase.BatchesPurchased),
		zap.Int("units_added", purchase.UnitsAdded),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, purchase)
}

// RestockHistory retrieves a product's restock events
func (h *ProductHandler) RestockHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	purchases, err := h.inventoryService.RestockHistory(r.Context(), id)
	if err != nil {
		h.respondInventoryError(w, "Failed to get restock history", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, purchases)
}

func (h *ProductHandler) respondInventoryError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrProductNameRequired),
		errors.Is(err, service.ErrNegativePrice),
		errors.Is(err, service.ErrNegativeBatchCost),
		errors.Is(err, service.ErrInvalidUnitsPerBatch),
		errors.Is(err, service.ErrInvalidBatches):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func toProductInput(req ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:             req.Name,
		Description:      req.Description,
		UnitSellingPrice: req.UnitSellingPrice,
		CostPerBatch:     req.CostPerBatch,
		UnitsPerBatch:    req.UnitsPerBatch,
	}
}
