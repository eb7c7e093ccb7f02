// Package services orchestrates the load → parse → join → filter pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"simulcheck/internal/analysis"
	"simulcheck/internal/config"
	"simulcheck/internal/schema"
	"simulcheck/internal/workbook"
)

// AnalysisService runs the simultaneous heating + cooling pipeline against
// the configured workbook. It holds no per-request state; every call
// recomputes from the (cached) sheet load.
type AnalysisService struct {
	cache  *workbook.Cache
	cfg    config.WorkbookConfig
	logger *slog.Logger
}

// NewAnalysisService creates the service.
func NewAnalysisService(cache *workbook.Cache, cfg config.WorkbookConfig, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		cache:  cache,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "analysis_service")),
	}
}

// Buildings returns the sorted names of buildings present in both sheets.
// Returns ErrNoCommonBuildings when the intersection is empty.
func (s *AnalysisService) Buildings(ctx context.Context) ([]string, error) {
	sch, err := s.loadSchema(ctx)
	if err != nil {
		return nil, err
	}

	buildings := sch.Buildings()
	if len(buildings) == 0 {
		return nil, ErrNoCommonBuildings
	}
	return buildings, nil
}

// Analyze joins the building's two series, applies the threshold, and
// derives the chart datasets. Threshold bounds are the caller's concern;
// this recomputes everything fresh on each call.
func (s *AnalysisService) Analyze(ctx context.Context, building string, threshold float64) (*analysis.Result, *analysis.ChartData, error) {
	wb, err := s.loadWorkbook(ctx)
	if err != nil {
		return nil, nil, err
	}

	sch, err := s.buildSchema(wb)
	if err != nil {
		return nil, nil, err
	}
	if len(sch.Buildings()) == 0 {
		return nil, nil, ErrNoCommonBuildings
	}

	cols, ok := sch.Lookup(building)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrBuildingNotFound, building)
	}

	chw, err := wb.CHW.Series(cols.CHW)
	if err != nil {
		return nil, nil, err
	}
	mthw, err := wb.MTHW.Series(cols.MTHW)
	if err != nil {
		return nil, nil, err
	}

	rows := analysis.Join(chw, mthw)
	result := analysis.Apply(building, rows, threshold)
	analysesTotal.Inc()

	s.logger.InfoContext(ctx, "analysis complete",
		slog.String("building", building),
		slog.Float64("threshold", threshold),
		slog.Int("joined_rows", len(result.Rows)),
		slog.Int("simultaneous_hours", result.Count))

	return result, analysis.Charts(result), nil
}

// WorkbookLoaded reports whether the configured workbook can currently be
// loaded; used by the health endpoint.
func (s *AnalysisService) WorkbookLoaded(ctx context.Context) error {
	_, err := s.loadWorkbook(ctx)
	return err
}

func (s *AnalysisService) loadWorkbook(ctx context.Context) (*workbook.Workbook, error) {
	wb, err := s.cache.Get(s.cfg.Path, s.cfg.CHWSheet, s.cfg.MTHWSheet)
	if err != nil {
		s.logger.ErrorContext(ctx, "workbook load failed",
			slog.String("path", s.cfg.Path),
			slog.String("error", err.Error()))
		return nil, err
	}
	return wb, nil
}

func (s *AnalysisService) loadSchema(ctx context.Context) (*schema.Schema, error) {
	wb, err := s.loadWorkbook(ctx)
	if err != nil {
		return nil, err
	}
	return s.buildSchema(wb)
}

func (s *AnalysisService) buildSchema(wb *workbook.Workbook) (*schema.Schema, error) {
	sch, err := schema.Build(wb.CHW.Columns, wb.MTHW.Columns, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build building schema: %w", err)
	}
	return sch, nil
}
