package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Pipeline errors
	ErrorTypeTransient   ErrorType = "TRANSIENT"    // retryable network/transport failure
	ErrorTypeAuthExpired ErrorType = "AUTH_EXPIRED" // external credential needs re-authorization
	ErrorTypeQuota       ErrorType = "QUOTA"        // upstream quota exhausted, fail fast
	ErrorTypeValidation  ErrorType = "VALIDATION"
	ErrorTypePersistence ErrorType = "PERSISTENCE"
	ErrorTypeRateLimit   ErrorType = "RATE_LIMIT"

	// Transport errors
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeInternal     ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Constructor functions for common error types

// NewTransientError creates a retryable transport-level error
func NewTransientError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeTransient,
		Message:    message,
		Retryable:  true,
		HTTPStatus: http.StatusBadGateway,
	}
}

// NewAuthExpiredError creates an error signalling that an external
// credential must be re-authorized before the operation can succeed
func NewAuthExpiredError(service string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthExpired,
		Message:    fmt.Sprintf("%s authorization has expired", service),
		HTTPStatus: http.StatusBadGateway,
	}
}

// NewQuotaError creates a fail-fast quota-exhaustion error
func NewQuotaError(service string) *AppError {
	return &AppError{
		Type:       ErrorTypeQuota,
		Message:    fmt.Sprintf("%s quota exceeded", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewPersistenceError creates a storage-level error
func NewPersistenceError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypePersistence,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(service string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    fmt.Sprintf("%s rate limit exceeded", service),
		Retryable:  true,
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Type inspection helpers

// IsType checks whether err is an AppError of the given type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsTransient reports whether err is a retryable transport failure
func IsTransient(err error) bool {
	return IsType(err, ErrorTypeTransient)
}

// IsAuthExpired reports whether err signals an expired external credential
func IsAuthExpired(err error) bool {
	return IsType(err, ErrorTypeAuthExpired)
}

// IsQuota reports whether err signals upstream quota exhaustion
func IsQuota(err error) bool {
	return IsType(err, ErrorTypeQuota)
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsRetryable reports whether the operation that produced err is safe
// and worthwhile to retry
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// Wrap wraps an error with a message, preserving AppError typing
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:       appErr.Type,
			Message:    message,
			Code:       appErr.Code,
			Details:    appErr.Details,
			Cause:      err,
			Retryable:  appErr.Retryable,
			HTTPStatus: appErr.HTTPStatus,
		}
	}
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// HTTPStatusFor maps an error to an HTTP status code
func HTTPStatusFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
