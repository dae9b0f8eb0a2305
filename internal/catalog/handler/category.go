package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fuelstock/fuelstock-backend/internal/catalog/repository"
	"github.com/fuelstock/fuelstock-backend/pkg/httputil"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	repo   *repository.CategoryRepository
	logger *logger.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(repo *repository.CategoryRepository, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		repo:   repo,
		logger: log,
	}
}

// List lists all categories with product counts
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, categories)
}

// Create creates a new category
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name" validate:"required,max=255"`
		Description *string `json:"description"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	category := &repository.Category{Name: req.Name, Description: req.Description}
	if err := h.repo.Create(r.Context(), category); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, category)
}

// Update renames a category
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Name        string  `json:"name" validate:"required,max=255"`
		Description *string `json:"description"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	category := &repository.Category{ID: id, Name: req.Name, Description: req.Description}
	if err := h.repo.Update(r.Context(), category); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, category)
}

// Delete removes a category
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
