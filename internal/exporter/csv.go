// Package exporter serializes analysis results to delimited text.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"simulcheck/internal/analysis"
)

// TimestampLayout is the datetime format used in exported files.
const TimestampLayout = "2006-01-02 15:04:05"

// Header is the column header row of the simultaneous-hours export.
var Header = []string{"datetime", "CHW", "MTHW"}

// Filename returns the deterministic download name for a building's
// simultaneous-hours export: spaces become underscores.
func Filename(building string) string {
	return "simultaneous_" + strings.ReplaceAll(building, " ", "_") + ".csv"
}

// WriteSimultaneous writes the simultaneous subset as CSV to w, prefixed
// with a UTF-8 BOM so Excel opens it cleanly. An empty subset produces a
// header-only file.
func WriteSimultaneous(w io.Writer, rows []analysis.JoinedRow) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range rows {
		record := []string{
			row.Timestamp.Format(TimestampLayout),
			formatValue(row.CHW),
			formatValue(row.MTHW),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveSimultaneous writes the export to a file under dir, creating the
// directory if needed, and returns the full path.
func SaveSimultaneous(dir, building string, rows []analysis.JoinedRow) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, Filename(building))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := WriteSimultaneous(f, rows); err != nil {
		return "", err
	}
	return path, nil
}

// ParseSimultaneous reads an export back into rows. Threshold flags are not
// stored in the file; every parsed row is marked simultaneous since only
// the simultaneous subset is ever exported.
func ParseSimultaneous(r io.Reader) ([]analysis.JoinedRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	// Strip the BOM if present.
	text := strings.TrimPrefix(string(data), "\xef\xbb\xbf")

	cr := csv.NewReader(strings.NewReader(text))
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("export is empty")
	}

	rows := make([]analysis.JoinedRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(Header) {
			return nil, fmt.Errorf("unexpected column count %d", len(record))
		}
		ts, err := time.Parse(TimestampLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("bad datetime %q: %w", record[0], err)
		}
		chw, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad CHW value %q: %w", record[1], err)
		}
		mthw, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad MTHW value %q: %w", record[2], err)
		}
		rows = append(rows, analysis.JoinedRow{
			Timestamp:    ts,
			CHW:          chw,
			MTHW:         mthw,
			CHWOn:        true,
			MTHWOn:       true,
			Simultaneous: true,
		})
	}
	return rows, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
