package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorImplementsError(t *testing.T) {
	err := New(http.StatusNotFound, "NOT_FOUND", "building not found")
	assert.Equal(t, "building not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
}

func TestErrValidationCarriesFieldDetails(t *testing.T) {
	err := ErrValidation("threshold", "must be between 0 and 5000")
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)

	details, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "threshold", details.Field)
}

func TestWorkbookErrorNamesSheet(t *testing.T) {
	err := WorkbookError("CHW hourly", fmt.Errorf("timestamp column not found"))
	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	assert.Contains(t, err.Message, "CHW hourly")
}

func TestHandleErrorWritesStructuredResponse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewErrorHandler(logger)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/analysis", nil)

	handler.HandleError(w, r, ErrValidation("building", "unknown building"))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.ErrorCode)
}

func TestHandleErrorWrapsPlainErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewErrorHandler(logger)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.HandleError(w, r, fmt.Errorf("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
