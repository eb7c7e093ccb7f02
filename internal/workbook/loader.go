// Package workbook loads hourly load sheets from the metering workbook.
//
// Each sheet is expected to carry a Timestamp column plus one value column
// per building series. Rows with unparseable timestamps are dropped, rows
// are sorted ascending, and duplicate timestamps keep the first occurrence.
package workbook

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// Sentinel errors surfaced by the loader.
var (
	ErrSheetNotFound          = errors.New("sheet not found")
	ErrTimestampColumnMissing = errors.New("timestamp column not found")
	ErrColumnNotFound         = errors.New("column not found")
)

// Sample is one reading for one building series.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// Sheet is one parsed worksheet: a sorted, duplicate-free timestamp axis
// plus the original value columns, kept as raw cells until a series is
// requested.
type Sheet struct {
	Name    string
	Columns []string // value column headers, original order
	rows    []sheetRow
}

type sheetRow struct {
	ts    time.Time
	cells []string // aligned to Columns
}

// Len returns the number of valid rows in the sheet.
func (s *Sheet) Len() int { return len(s.rows) }

// Series extracts one value column as a timestamp-ordered sample slice.
// Cells that are empty or fail to parse as numbers are skipped.
func (s *Sheet) Series(column string) ([]Sample, error) {
	idx := -1
	for i, c := range s.Columns {
		if c == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q in sheet %q", ErrColumnNotFound, column, s.Name)
	}

	samples := make([]Sample, 0, len(s.rows))
	for _, r := range s.rows {
		if idx >= len(r.cells) {
			continue
		}
		cell := strings.TrimSpace(r.cells[idx])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
		if err != nil {
			continue
		}
		samples = append(samples, Sample{Timestamp: r.ts, Value: v})
	}
	return samples, nil
}

// Workbook is the pair of hourly load sheets the analyzer works from.
type Workbook struct {
	CHW  *Sheet
	MTHW *Sheet
}

// Loader reads the two hourly sheets out of an Excel workbook.
type Loader struct {
	timestampColumn string
	logger          *slog.Logger
}

// NewLoader creates a loader that recognizes the given timestamp column
// header (matched case-insensitively after trimming).
func NewLoader(timestampColumn string, logger *slog.Logger) *Loader {
	return &Loader{
		timestampColumn: timestampColumn,
		logger:          logger.With(slog.String("component", "workbook_loader")),
	}
}

// Load opens the workbook and extracts both sheets. A missing sheet or a
// sheet without the timestamp column fails the whole load.
func (l *Loader) Load(path, chwSheet, mthwSheet string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	chwRows, err := l.sheetRows(f, chwSheet)
	if err != nil {
		return nil, err
	}
	mthwRows, err := l.sheetRows(f, mthwSheet)
	if err != nil {
		return nil, err
	}

	wb := &Workbook{}
	g := new(errgroup.Group)
	g.Go(func() error {
		sheet, err := l.parseSheet(chwSheet, chwRows)
		if err != nil {
			return err
		}
		wb.CHW = sheet
		return nil
	})
	g.Go(func() error {
		sheet, err := l.parseSheet(mthwSheet, mthwRows)
		if err != nil {
			return err
		}
		wb.MTHW = sheet
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Info("workbook loaded",
		slog.String("path", path),
		slog.Int("chw_rows", wb.CHW.Len()),
		slog.Int("mthw_rows", wb.MTHW.Len()))

	return wb, nil
}

func (l *Loader) sheetRows(f *excelize.File, name string) ([][]string, error) {
	idx, err := f.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	return rows, nil
}

// parseSheet turns raw cells into a Sheet: locate the timestamp column,
// parse and validate timestamps, sort, and drop duplicates (keep first).
func (l *Loader) parseSheet(name string, rows [][]string) (*Sheet, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q (sheet is empty)", ErrTimestampColumnMissing, name)
	}

	header := rows[0]
	tsIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), l.timestampColumn) {
			tsIdx = i
			break
		}
	}
	if tsIdx < 0 {
		return nil, fmt.Errorf("%w: %q in sheet %q", ErrTimestampColumnMissing, l.timestampColumn, name)
	}

	columns := make([]string, 0, len(header)-1)
	colIdx := make([]int, 0, len(header)-1)
	for i, h := range header {
		if i == tsIdx {
			continue
		}
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		columns = append(columns, h)
		colIdx = append(colIdx, i)
	}

	parsed := make([]sheetRow, 0, len(rows)-1)
	dropped := 0
	for _, raw := range rows[1:] {
		if tsIdx >= len(raw) {
			dropped++
			continue
		}
		ts, ok := parseTimestamp(raw[tsIdx])
		if !ok {
			dropped++
			continue
		}
		cells := make([]string, len(columns))
		for j, src := range colIdx {
			if src < len(raw) {
				cells[j] = raw[src]
			}
		}
		parsed = append(parsed, sheetRow{ts: ts, cells: cells})
	}
	if dropped > 0 {
		l.logger.Debug("dropped rows with unparseable timestamps",
			slog.String("sheet", name),
			slog.Int("dropped", dropped))
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].ts.Before(parsed[j].ts)
	})

	// Duplicate timestamps keep the first occurrence.
	deduped := parsed[:0]
	duplicates := 0
	for _, r := range parsed {
		if len(deduped) > 0 && r.ts.Equal(deduped[len(deduped)-1].ts) {
			duplicates++
			continue
		}
		deduped = append(deduped, r)
	}
	if duplicates > 0 {
		l.logger.Warn("dropped duplicate timestamps, kept first occurrence",
			slog.String("sheet", name),
			slog.Int("duplicates", duplicates))
	}

	return &Sheet{Name: name, Columns: columns, rows: deduped}, nil
}

// timestampLayouts covers the formats excelize hands back for date cells
// plus the common ways analysts type timestamps into text cells.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04",
	"01-02-06 15:04",
	"2006-01-02",
	"1/2/2006",
}

func parseTimestamp(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, cell); err == nil {
			return ts, true
		}
	}
	// Excel date serials come through as plain numbers when the cell has
	// no date format applied.
	if serial, err := strconv.ParseFloat(cell, 64); err == nil && serial > 0 {
		if ts, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
