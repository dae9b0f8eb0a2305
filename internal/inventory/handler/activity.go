package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fuelstock/fuelstock-backend/internal/inventory/domain"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/repository"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/service"
	"github.com/fuelstock/fuelstock-backend/pkg/httputil"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
)

// ActivityHandler handles stock mutation endpoints
type ActivityHandler struct {
	engine       *service.Engine
	activityRepo *repository.ActivityRepository
	logger       *logger.Logger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(engine *service.Engine, activityRepo *repository.ActivityRepository, log *logger.Logger) *ActivityHandler {
	return &ActivityHandler{
		engine:       engine,
		activityRepo: activityRepo,
		logger:       log,
	}
}

// Apply applies one stock mutation to a lot. A removal exceeding the
// current stock comes back as 400 INSUFFICIENT_STOCK with the lot's
// current quantity in the details; a lock wait that times out comes
// back as 409 TRANSACTION_CONFLICT and is safe to retry.
func (h *ActivityHandler) Apply(w http.ResponseWriter, r *http.Request) {
	lotID := chi.URLParam(r, "id")

	var req struct {
		Action   string `json:"action" validate:"required,oneof=restock sold removed_expired removed_manual"`
		Quantity int    `json:"quantity" validate:"required,gt=0"`
		Note     string `json:"note" validate:"max=500"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.engine.ApplyActivity(r.Context(), service.ApplyActivityInput{
		LotID:       lotID,
		Action:      domain.Action(req.Action),
		Quantity:    req.Quantity,
		PerformedBy: httputil.GetUserID(r.Context()),
		Note:        req.Note,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// ListByLot lists the activity ledger of one lot, newest first
func (h *ActivityHandler) ListByLot(w http.ResponseWriter, r *http.Request) {
	lotID := chi.URLParam(r, "id")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	activities, err := h.activityRepo.ListByLot(r.Context(), lotID, limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, activities)
}
