package errors

import "net/http"

// ErrorCode represents the type of error
type ErrorCode string

const (
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrInvalidOperation ErrorCode = "INVALID_OPERATION"
	ErrValidation       ErrorCode = "VALIDATION_ERROR"
	ErrBadRequest       ErrorCode = "BAD_REQUEST"
	ErrUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrForbidden        ErrorCode = "FORBIDDEN"
	ErrConflict         ErrorCode = "CONFLICT"
	ErrInternalError    ErrorCode = "INTERNAL_ERROR"
	ErrStoreFailure     ErrorCode = "STORE_FAILURE"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:         http.StatusNotFound,
	ErrInvalidOperation: http.StatusBadRequest,
	ErrValidation:       http.StatusUnprocessableEntity,
	ErrBadRequest:       http.StatusBadRequest,
	ErrUnauthorized:     http.StatusUnauthorized,
	ErrForbidden:        http.StatusForbidden,
	ErrConflict:         http.StatusConflict,
	ErrInternalError:    http.StatusInternalServerError,
	ErrStoreFailure:     http.StatusServiceUnavailable,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
