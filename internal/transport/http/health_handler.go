package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"simulcheck/internal/services"
)

// HealthHandler reports service liveness and workbook readability.
type HealthHandler struct {
	service *services.AnalysisService
	version string
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(service *services.AnalysisService, version string) *HealthHandler {
	return &HealthHandler{service: service, version: version}
}

// Routes sets up the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", h.GetHealth)
	return r
}

// GetHealth handles GET /api/health. The service is degraded, not down,
// when the workbook cannot be read.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	workbookStatus := "ok"
	status := "ok"
	if err := h.service.WorkbookLoaded(r.Context()); err != nil {
		workbookStatus = err.Error()
		status = "degraded"
	}

	render.JSON(w, r, map[string]interface{}{
		"status":    status,
		"version":   h.version,
		"workbook":  workbookStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
