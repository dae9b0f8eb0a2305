package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fuelstock/fuelstock-backend/internal/catalog/repository"
	"github.com/fuelstock/fuelstock-backend/pkg/httputil"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	repo   *repository.ProductRepository
	logger *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(repo *repository.ProductRepository, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		repo:   repo,
		logger: log,
	}
}

// List lists products, optionally filtered by category or name
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	products, err := h.repo.List(r.Context(), repository.ProductFilter{
		CategoryID: q.Get("category_id"),
		Search:     q.Get("search"),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, products)
}

// Get gets a product by ID
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// LookupByBarcode looks a product up by its barcode
func (h *ProductHandler) LookupByBarcode(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")

	product, err := h.repo.GetByBarcode(r.Context(), barcode)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// productRequest is the create/update payload
type productRequest struct {
	Name                      string  `json:"name" validate:"required,max=255"`
	Barcode                   *string `json:"barcode" validate:"omitempty,numeric,min=8,max=14"`
	Description               *string `json:"description"`
	ImageURL                  *string `json:"image_url" validate:"omitempty,url"`
	CategoryID                string  `json:"category_id" validate:"required,uuid"`
	Unit                      string  `json:"unit" validate:"max=50"`
	NotificationThresholdDays int     `json:"notification_threshold_days" validate:"omitempty,min=1"`
}

// Create creates a new product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	product := &repository.Product{
		Name:                      req.Name,
		Barcode:                   req.Barcode,
		Description:               req.Description,
		ImageURL:                  req.ImageURL,
		CategoryID:                req.CategoryID,
		Unit:                      req.Unit,
		NotificationThresholdDays: req.NotificationThresholdDays,
	}
	if err := h.repo.Create(r.Context(), product); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, product)
}

// Update updates a product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req productRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	product := &repository.Product{
		ID:                        id,
		Name:                      req.Name,
		Barcode:                   req.Barcode,
		Description:               req.Description,
		ImageURL:                  req.ImageURL,
		CategoryID:                req.CategoryID,
		Unit:                      req.Unit,
		NotificationThresholdDays: req.NotificationThresholdDays,
	}
	if product.Unit == "" {
		product.Unit = "piece"
	}
	if product.NotificationThresholdDays < 1 {
		product.NotificationThresholdDays = 7
	}
	if err := h.repo.Update(r.Context(), product); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// Delete removes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
