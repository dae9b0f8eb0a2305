package notifier

import (
	"net/http"
	"strings"

	"github.com/fuelstock/fuelstock-backend/pkg/errors"
	"github.com/fuelstock/fuelstock-backend/pkg/httputil"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
)

// Handler exposes the manual scan trigger for external cron schedulers
type Handler struct {
	scanner   *Scanner
	cronToken string
	logger    *logger.Logger
}

// NewHandler creates a new notifier handler
func NewHandler(scanner *Scanner, cronToken string, log *logger.Logger) *Handler {
	return &Handler{
		scanner:   scanner,
		cronToken: cronToken,
		logger:    log,
	}
}

// CheckExpirations runs one expiration scan on demand. The endpoint is meant
// for external cron services and is guarded by a static bearer token instead
// of a user JWT.
func (h *Handler) CheckExpirations(w http.ResponseWriter, r *http.Request) {
	if h.cronToken == "" {
		httputil.Error(w, errors.Forbidden("manual scans are disabled"))
		return
	}

	auth := r.Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == auth || token != h.cronToken {
		httputil.Error(w, errors.Unauthorized("invalid cron token"))
		return
	}

	result, err := h.scanner.Scan(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}
