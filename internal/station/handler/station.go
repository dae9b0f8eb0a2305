package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fuelstock/fuelstock-backend/internal/station/repository"
	"github.com/fuelstock/fuelstock-backend/pkg/httputil"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
)

// StationHandler handles station endpoints
type StationHandler struct {
	repo   *repository.StationRepository
	logger *logger.Logger
}

// NewStationHandler creates a new station handler
func NewStationHandler(repo *repository.StationRepository, log *logger.Logger) *StationHandler {
	return &StationHandler{
		repo:   repo,
		logger: log,
	}
}

// List lists all stations
func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.repo.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stations)
}

// Get gets a station by ID
func (h *StationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	station, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, station)
}

// Create creates a new station
func (h *StationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string  `json:"name" validate:"required,max=255"`
		Address *string `json:"address"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	station := &repository.Station{
		Name:    req.Name,
		Address: req.Address,
	}
	if err := h.repo.Create(r.Context(), station); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, station)
}

// Update updates a station
func (h *StationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Name    string  `json:"name" validate:"required,max=255"`
		Address *string `json:"address"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	station := &repository.Station{
		ID:      id,
		Name:    req.Name,
		Address: req.Address,
	}
	if err := h.repo.Update(r.Context(), station); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, station)
}

// Delete removes a station
func (h *StationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
