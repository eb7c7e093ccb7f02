package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simulcheck/internal/config"
	apierrors "simulcheck/internal/errors"
	"simulcheck/internal/exporter"
	"simulcheck/internal/services"
	"simulcheck/internal/shared/testutil"
	"simulcheck/internal/workbook"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T, path string) *AnalysisHandler {
	t.Helper()
	cfg := config.WorkbookConfig{
		Path:            path,
		CHWSheet:        "CHW hourly",
		MTHWSheet:       "MTHW hourly",
		TimestampColumn: "Timestamp",
	}
	logger := testLogger()
	cache := workbook.NewCache(workbook.NewLoader(cfg.TimestampColumn, logger), logger)
	svc := services.NewAnalysisService(cache, cfg, logger)
	return NewAnalysisHandler(svc, logger, apierrors.NewErrorHandler(logger))
}

func campusWorkbook(t *testing.T) string {
	t.Helper()
	return testutil.WriteWorkbook(t,
		testutil.HourlySheet("CHW hourly",
			[]string{"Library CHW (kbtuh)", "Annex CHW (kbtuh)"},
			[]string{"2024-01-15 01:00:00", "2024-01-15 02:00:00"},
			[][]float64{{750, 50}, {750, 50}},
		),
		testutil.HourlySheet("MTHW hourly",
			[]string{"Library MTHW (kbtuh)"},
			[]string{"2024-01-15 01:00:00", "2024-01-15 02:00:00"},
			[][]float64{{800}, {650}},
		),
	)
}

func doRequest(h *AnalysisHandler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	h.Routes().ServeHTTP(w, r)
	return w
}

func TestGetBuildings(t *testing.T) {
	h := newTestHandler(t, campusWorkbook(t))

	w := doRequest(h, "/buildings")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string   `json:"status"`
		Data   []string `json:"data"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, []string{"Library"}, resp.Data)
	assert.Equal(t, 1, resp.Count)
}

func TestGetBuildingsNoCommon(t *testing.T) {
	path := testutil.WriteWorkbook(t,
		testutil.HourlySheet("CHW hourly", []string{"A CHW (kbtuh)"},
			[]string{"2024-01-15 01:00:00"}, [][]float64{{1}}),
		testutil.HourlySheet("MTHW hourly", []string{"B MTHW (kbtuh)"},
			[]string{"2024-01-15 01:00:00"}, [][]float64{{1}}),
	)
	h := newTestHandler(t, path)

	w := doRequest(h, "/buildings")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data    []string `json:"data"`
		Message string   `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
	assert.NotEmpty(t, resp.Message)
}

func TestGetAnalysis(t *testing.T) {
	h := newTestHandler(t, campusWorkbook(t))

	w := doRequest(h, "/analysis?building=Library&threshold=700")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Building     string `json:"building"`
			Count        int    `json:"count"`
			DownloadName string `json:"download_name"`
			Simultaneous []struct {
				CHW  float64 `json:"chw"`
				MTHW float64 `json:"mthw"`
			} `json:"simultaneous_rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Library", resp.Data.Building)
	assert.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, "simultaneous_Library.csv", resp.Data.DownloadName)
	require.Len(t, resp.Data.Simultaneous, 1)
	assert.Equal(t, 750.0, resp.Data.Simultaneous[0].CHW)
}

func TestGetAnalysisDefaultThreshold(t *testing.T) {
	h := newTestHandler(t, campusWorkbook(t))

	w := doRequest(h, "/analysis?building=Library")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Threshold float64 `json:"threshold"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(DefaultThreshold), resp.Data.Threshold)
}

func TestGetAnalysisValidation(t *testing.T) {
	h := newTestHandler(t, campusWorkbook(t))

	cases := []struct {
		name   string
		target string
	}{
		{"missing building", "/analysis?threshold=700"},
		{"threshold too high", "/analysis?building=Library&threshold=5001"},
		{"threshold negative", "/analysis?building=Library&threshold=-1"},
		{"threshold not a number", "/analysis?building=Library&threshold=abc"},
		{"unknown building", "/analysis?building=Nowhere&threshold=700"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(h, tc.target)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
		})
	}
}

func TestGetAnalysisThresholdBounds(t *testing.T) {
	h := newTestHandler(t, campusWorkbook(t))

	// 0 and 5000 are inclusive bounds.
	assert.Equal(t, http.StatusOK, doRequest(h, "/analysis?building=Library&threshold=0").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, "/analysis?building=Library&threshold=5000").Code)
}

func TestGetAnalysisMissingSheet(t *testing.T) {
	path := testutil.WriteWorkbook(t,
		testutil.HourlySheet("CHW hourly", []string{"A CHW (kbtuh)"},
			[]string{"2024-01-15 01:00:00"}, [][]float64{{1}}),
	)
	h := newTestHandler(t, path)

	w := doRequest(h, "/analysis?building=A&threshold=700")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "UNPROCESSABLE_WORKBOOK")
}

func TestDownloadAnalysis(t *testing.T) {
	h := newTestHandler(t, campusWorkbook(t))

	w := doRequest(h, "/analysis/download?building=Library&threshold=700")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="simultaneous_Library.csv"`)

	rows, err := exporter.ParseSimultaneous(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 750.0, rows[0].CHW)
	assert.Equal(t, 800.0, rows[0].MTHW)
}

func TestDownloadAnalysisEmptySubset(t *testing.T) {
	h := newTestHandler(t, campusWorkbook(t))

	// Threshold above every load: header-only CSV, not an error.
	w := doRequest(h, "/analysis/download?building=Library&threshold=5000")
	require.Equal(t, http.StatusOK, w.Code)

	rows, err := exporter.ParseSimultaneous(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
