package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fuelstock/fuelstock-backend/internal/directory/repository"
	"github.com/fuelstock/fuelstock-backend/pkg/httputil"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
)

// UserHandler exposes the cached user directory read-only. Users are
// created and edited in the identity provider, never here.
type UserHandler struct {
	repo   *repository.UserRepository
	logger *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(repo *repository.UserRepository, log *logger.Logger) *UserHandler {
	return &UserHandler{
		repo:   repo,
		logger: log,
	}
}

// List lists cached users, optionally filtered by station
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.List(r.Context(), r.URL.Query().Get("station_id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, users)
}

// Get gets a cached user by ID
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, user)
}
