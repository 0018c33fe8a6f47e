package dto

import (
	"net/http"
	"testing"

	"github.com/schoolerp/authoring/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.ErrCodeValidationFailed, http.StatusUnprocessableEntity},
		{shared.ErrCodeReferenceLoadFailed, http.StatusBadGateway},
		{shared.ErrCodeBulkImportFailed, http.StatusBadGateway},
		{shared.ErrCodePersistenceFailed, http.StatusBadGateway},
		{shared.ErrCodeInvalidLineID, http.StatusInternalServerError},
		{shared.ErrCodeSessionNotFound, http.StatusNotFound},
		{shared.ErrCodeSessionClosed, http.StatusConflict},
		{shared.ErrCodeInvalidState, http.StatusConflict},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetHTTPStatus(tt.code), "code %s", tt.code)
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "gone", "req-123")

	assert.False(t, resp.Success)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestNewSuccessResponseWithWarning(t *testing.T) {
	resp := NewSuccessResponseWithWarning(map[string]int{"n": 1}, "REFERENCE_LOAD_FAILED", "catalog unavailable")

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Equal(t, "REFERENCE_LOAD_FAILED", resp.Warning.Code)
}
