// Package http exposes the analysis pipeline over a chi-based HTTP API.
package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "simulcheck/internal/errors"
	"simulcheck/internal/exporter"
	"simulcheck/internal/middleware"
	"simulcheck/internal/services"
	"simulcheck/internal/workbook"
)

// DefaultThreshold is the threshold applied when the client omits one.
const DefaultThreshold = 700

// AnalysisHandler handles building listing, analysis, and CSV download.
type AnalysisHandler struct {
	service      *services.AnalysisService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewAnalysisHandler creates the handler.
func NewAnalysisHandler(service *services.AnalysisService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the analysis routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/buildings", h.GetBuildings)
	r.Get("/analysis", h.GetAnalysis)
	r.Get("/analysis/download", h.DownloadAnalysis)

	return r
}

// analysisParams are the validated query parameters for an analysis run.
type analysisParams struct {
	Building  string `validate:"required"`
	Threshold int    `validate:"gte=0,lte=5000"`
}

// GetBuildings handles GET /api/buildings
func (h *AnalysisHandler) GetBuildings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	buildings, err := h.service.Buildings(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoCommonBuildings) {
			// Not a failure: the selector is simply empty. The client needs
			// the explanatory message to stop gracefully.
			render.JSON(w, r, map[string]interface{}{
				"status":  "success",
				"data":    []string{},
				"count":   0,
				"message": "No buildings are present in both the CHW and MTHW sheets.",
			})
			return
		}
		h.handleLoadError(w, r, reqID, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   buildings,
		"count":  len(buildings),
	})
}

// GetAnalysis handles GET /api/analysis?building=X&threshold=N
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	params, apiErr := h.parseParams(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	h.logger.InfoContext(r.Context(), "running analysis",
		slog.String("request_id", reqID),
		slog.String("building", params.Building),
		slog.Int("threshold", params.Threshold),
	)

	result, charts, err := h.service.Analyze(r.Context(), params.Building, float64(params.Threshold))
	if err != nil {
		h.handleAnalysisError(w, r, reqID, params.Building, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"building":          result.Building,
			"threshold":         result.Threshold,
			"count":             result.Count,
			"simultaneous_rows": result.Simultaneous,
			"charts":            charts,
			"download_name":     exporter.Filename(result.Building),
		},
	})
}

// DownloadAnalysis handles GET /api/analysis/download?building=X&threshold=N
// and streams the simultaneous subset as a CSV attachment.
func (h *AnalysisHandler) DownloadAnalysis(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	params, apiErr := h.parseParams(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	result, _, err := h.service.Analyze(r.Context(), params.Building, float64(params.Threshold))
	if err != nil {
		h.handleAnalysisError(w, r, reqID, params.Building, err)
		return
	}

	filename := exporter.Filename(result.Building)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.WriteSimultaneous(w, result.Simultaneous); err != nil {
		// Headers are already written; log instead of re-rendering.
		h.logger.ErrorContext(r.Context(), "failed to stream export",
			slog.String("request_id", reqID),
			slog.String("error", err.Error()),
		)
	}
}

func (h *AnalysisHandler) parseParams(r *http.Request) (*analysisParams, *apierrors.APIError) {
	params := &analysisParams{
		Building:  r.URL.Query().Get("building"),
		Threshold: DefaultThreshold,
	}

	if raw := r.URL.Query().Get("threshold"); raw != "" {
		t, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apierrors.ErrValidation("threshold", "Threshold must be an integer")
		}
		params.Threshold = t
	}

	if err := h.validate.Struct(params); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "Building":
				return nil, apierrors.ErrValidation("building", "Building is required")
			default:
				return nil, apierrors.ErrValidation("threshold", "Threshold must be between 0 and 5000")
			}
		}
		return nil, apierrors.ErrValidation("request", err.Error())
	}

	return params, nil
}

func (h *AnalysisHandler) handleAnalysisError(w http.ResponseWriter, r *http.Request, reqID, building string, err error) {
	if errors.Is(err, services.ErrBuildingNotFound) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("building",
			fmt.Sprintf("Building %q is not present in both sheets", building)))
		return
	}
	if errors.Is(err, services.ErrNoCommonBuildings) {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusNotFound,
			"NO_COMMON_BUILDINGS",
			"No buildings are present in both the CHW and MTHW sheets",
		))
		return
	}
	h.handleLoadError(w, r, reqID, err)
}

func (h *AnalysisHandler) handleLoadError(w http.ResponseWriter, r *http.Request, reqID string, err error) {
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("request_id", reqID),
		slog.String("error", err.Error()),
	)

	if errors.Is(err, workbook.ErrSheetNotFound) || errors.Is(err, workbook.ErrTimestampColumnMissing) {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusUnprocessableEntity,
			"UNPROCESSABLE_WORKBOOK",
			"The workbook is missing a required sheet or column",
			err.Error(),
		))
		return
	}

	h.errorHandler.HandleError(w, r, err)
}
