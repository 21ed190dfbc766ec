package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`
	cause   error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains
func (e *APIError) Unwrap() error {
	return e.cause
}

// WithDetails adds additional details to an error
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

// WithCause attaches the underlying error without leaking it to clients
func (e *APIError) WithCause(err error) *APIError {
	e.cause = err
	return e
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

// InvalidOperation creates an INVALID_OPERATION error (e.g. self-follow)
func InvalidOperation(message string) *APIError {
	return &APIError{
		Code:    ErrInvalidOperation,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// ValidationError creates a VALIDATION_ERROR
func ValidationError(field, message string) *APIError {
	return &APIError{
		Code:    ErrValidation,
		Message: message,
		Field:   field,
		Status:  http.StatusUnprocessableEntity,
	}
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return &APIError{
		Code:    ErrBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *APIError {
	return &APIError{
		Code:    ErrUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	return &APIError{
		Code:    ErrForbidden,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// Conflict creates a CONFLICT error
func Conflict(resource string) *APIError {
	return &APIError{
		Code:    ErrConflict,
		Message: fmt.Sprintf("%s already exists or is in an invalid state", resource),
		Status:  http.StatusConflict,
	}
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return &APIError{
		Code:    ErrInternalError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

// StoreFailure creates a STORE_FAILURE error for record store problems
func StoreFailure(operation string) *APIError {
	return &APIError{
		Code:    ErrStoreFailure,
		Message: fmt.Sprintf("record store %s failed", operation),
		Status:  http.StatusServiceUnavailable,
	}
}

// IsNotFound reports whether err is (or wraps) a NOT_FOUND APIError
func IsNotFound(err error) bool {
	return HasCode(err, ErrNotFound)
}

// IsStoreFailure reports whether err is (or wraps) a STORE_FAILURE APIError
func IsStoreFailure(err error) bool {
	return HasCode(err, ErrStoreFailure)
}

// HasCode reports whether err is an APIError with the given code
func HasCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// AsAPIError converts any error into an APIError, wrapping unknown errors
// as internal errors so handlers always have a status to respond with.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return InternalError("internal server error").WithCause(err)
}
