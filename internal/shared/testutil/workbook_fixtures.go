// Package testutil provides shared helpers for building workbook fixtures
// in tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SheetSpec describes one worksheet for a fixture workbook: a header row
// followed by data rows, written verbatim.
type SheetSpec struct {
	Name string
	Rows [][]interface{}
}

// WriteWorkbook creates an xlsx file in a temp dir from the given sheets
// and returns its path. The default "Sheet1" is renamed to the first sheet.
func WriteWorkbook(t *testing.T, sheets ...SheetSpec) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, spec := range sheets {
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), spec.Name)
		} else {
			if _, err := f.NewSheet(spec.Name); err != nil {
				t.Fatalf("failed to create sheet %q: %v", spec.Name, err)
			}
		}
		for r, row := range spec.Rows {
			for c, val := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("failed to build cell name: %v", err)
				}
				if err := f.SetCellValue(spec.Name, cell, val); err != nil {
					t.Fatalf("failed to set cell %s: %v", cell, err)
				}
			}
		}
	}

	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save fixture workbook: %v", err)
	}
	return path
}

// HourlySheet builds a SheetSpec with a Timestamp column plus the given
// value columns, one row per timestamp string.
func HourlySheet(name string, columns []string, timestamps []string, values [][]float64) SheetSpec {
	header := make([]interface{}, 0, len(columns)+1)
	header = append(header, "Timestamp")
	for _, c := range columns {
		header = append(header, c)
	}

	rows := [][]interface{}{header}
	for i, ts := range timestamps {
		row := make([]interface{}, 0, len(columns)+1)
		row = append(row, ts)
		for _, v := range values[i] {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return SheetSpec{Name: name, Rows: rows}
}
