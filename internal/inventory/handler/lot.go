package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fuelstock/fuelstock-backend/internal/inventory/domain"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/repository"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/service"
	"github.com/fuelstock/fuelstock-backend/pkg/errors"
	"github.com/fuelstock/fuelstock-backend/pkg/httputil"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
)

// LotHandler handles lot endpoints
type LotHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewLotHandler creates a new lot handler
func NewLotHandler(svc *service.InventoryService, log *logger.Logger) *LotHandler {
	return &LotHandler{
		service: svc,
		logger:  log,
	}
}

// List lists lots with optional filters and pagination
func (h *LotHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.LotFilter{
		StationID:  q.Get("station_id"),
		CategoryID: q.Get("category_id"),
		Search:     q.Get("search"),
	}

	// Non-admins are pinned to their own station and do not see drained
	// lots unless they ask for them by status.
	if httputil.GetUserRole(r.Context()) != "admin" {
		filter.StationID = httputil.GetStationID(r.Context())
		filter.ExcludeEmpty = q.Get("status") == ""
	}

	if status := q.Get("status"); status != "" {
		s := domain.Status(status)
		if !s.IsValid() {
			httputil.Error(w, errors.BadRequest("unknown status: "+status))
			return
		}
		filter.Status = s
	}

	if from := q.Get("expires_after"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			httputil.Error(w, errors.BadRequest("expires_after must be a YYYY-MM-DD date"))
			return
		}
		filter.ExpiresAfter = t
	}
	if to := q.Get("expires_before"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			httputil.Error(w, errors.BadRequest("expires_before must be a YYYY-MM-DD date"))
			return
		}
		filter.ExpiresBefore = t
	}

	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}

	lots, total, err := h.service.ListLots(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int((total + int64(filter.PerPage) - 1) / int64(filter.PerPage))
	httputil.JSONWithMeta(w, http.StatusOK, lots, &httputil.Meta{
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Get returns a lot with its activity ledger and notification history
func (h *LotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lot, err := h.service.GetLot(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lot)
}

// Receive registers a newly received lot
func (h *LotHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LotCode   string `json:"lot_code" validate:"required,max=64"`
		ProductID string `json:"product_id" validate:"required,uuid"`
		StationID string `json:"station_id" validate:"required,uuid"`
		Quantity  int    `json:"quantity" validate:"required,gt=0"`
		ExpiresAt string `json:"expires_at" validate:"required,datetime=2006-01-02"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	expiresAt, err := time.Parse("2006-01-02", req.ExpiresAt)
	if err != nil {
		httputil.Error(w, errors.BadRequest("expires_at must be a YYYY-MM-DD date"))
		return
	}

	lot, err := h.service.ReceiveLot(r.Context(), service.ReceiveLotInput{
		LotCode:    req.LotCode,
		ProductID:  req.ProductID,
		StationID:  req.StationID,
		Quantity:   req.Quantity,
		ExpiresAt:  expiresAt,
		ReceivedBy: httputil.GetUserID(r.Context()),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, lot)
}

// BulkDelete removes lots by ID
func (h *LotHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	deleted, err := h.service.DeleteLots(r.Context(), req.IDs, httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
