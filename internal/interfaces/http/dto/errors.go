package dto

import (
	"net/http"

	"github.com/oilmill/backend/internal/domain/shared"
)

// Domain error codes, surfaced unchanged in the error envelope
const (
	ErrCodeValidation          = shared.CodeValidation
	ErrCodeInsufficientStock   = shared.CodeInsufficientStock
	ErrCodeNotFound            = shared.CodeNotFound
	ErrCodeConcurrencyConflict = shared.CodeConcurrencyConflict
	ErrCodeUnexpected          = shared.CodeUnexpected
)

// Transport-only error codes
const (
	// ErrCodeUnauthorized is used when bearer authentication is enabled and the token is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeRouteNotFound is used for unknown paths
	ErrCodeRouteNotFound = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeInsufficientStock:   http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeUnexpected:          http.StatusInternalServerError,

	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:   http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
