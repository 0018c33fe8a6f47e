package dto

import (
	"net/http"

	"github.com/schoolerp/authoring/internal/domain/shared"
)

// Transport-level error codes, used where no domain error exists yet
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// Upstream failure classes map to 502: the backend is what failed, not
// this service and not the caller. INVALID_LINE_ID is a programming
// error on the caller's side of the page contract, so it surfaces as 500
// rather than a user-facing 4xx.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,
	ErrCodeInternal:   http.StatusInternalServerError,

	shared.ErrCodeValidationFailed:    http.StatusUnprocessableEntity,
	shared.ErrCodeReferenceLoadFailed: http.StatusBadGateway,
	shared.ErrCodeBulkImportFailed:    http.StatusBadGateway,
	shared.ErrCodePersistenceFailed:   http.StatusBadGateway,
	shared.ErrCodeInvalidLineID:       http.StatusInternalServerError,
	shared.ErrCodeSessionNotFound:     http.StatusNotFound,
	shared.ErrCodeSessionClosed:       http.StatusConflict,
	shared.ErrCodeInvalidState:        http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
