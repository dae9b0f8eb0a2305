package handler

import (
	"net/http"

	"github.com/fuelstock/fuelstock-backend/internal/inventory/service"
	"github.com/fuelstock/fuelstock-backend/pkg/httputil"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *service.InventoryService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: svc,
		logger:  log,
	}
}

// GetStats returns per-status lot counts, the next lots to expire and
// recent ledger entries. Managers and operators see their own station;
// admins see everything unless they scope by query parameter.
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station_id")
	if stationID == "" && httputil.GetUserRole(r.Context()) != "admin" {
		stationID = httputil.GetStationID(r.Context())
	}

	stats, err := h.service.GetDashboardStats(r.Context(), stationID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}
