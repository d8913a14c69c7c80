package dto

import "net/http"

// Transport-level error codes. Domain errors carry their own codes
// (see shared.DomainError); these cover failures that never reach a service.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
)

// errorCodeHTTPStatus maps stable error codes to HTTP status codes.
// Validation codes map to 400; state-machine violations map to 422 so
// clients can distinguish a malformed request from a legal request the
// current state rejects.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,

	// Field validation -> 400 Bad Request
	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_NAME":         http.StatusBadRequest,
	"INVALID_EMAIL":        http.StatusBadRequest,
	"INVALID_PHONE":        http.StatusBadRequest,
	"INVALID_ADDRESS":      http.StatusBadRequest,
	"INVALID_COMPANY":      http.StatusBadRequest,
	"INVALID_PRICE":        http.StatusBadRequest,
	"INVALID_STOCK":        http.StatusBadRequest,
	"INVALID_QUANTITY":     http.StatusBadRequest,
	"INVALID_PRODUCT_NAME": http.StatusBadRequest,
	"INVALID_NUMBER":       http.StatusBadRequest,
	"INVALID_CLIENT":       http.StatusBadRequest,
	"INVALID_ITEMS":        http.StatusBadRequest,
	"INVALID_TAX_RATE":     http.StatusBadRequest,
	"INVALID_ENTITY":       http.StatusBadRequest,

	// Business rule violations -> 422 Unprocessable Entity
	"INVALID_STATUS": http.StatusUnprocessableEntity,
	"INVALID_STATE":  http.StatusUnprocessableEntity,

	// Conflicts
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"ALREADY_EXISTS":       http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 so unexpected failures never masquerade
// as client errors.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
