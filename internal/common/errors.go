package common

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType categorizes application errors for HTTP status mapping
type ErrorType string

const (
	// ErrorTypeInput for missing or malformed request input (HTTP 400)
	ErrorTypeInput ErrorType = "input"
	// ErrorTypeNotFound for missing corpora or pages (HTTP 404)
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeUpstream for fetch/dependency failures (HTTP 502)
	ErrorTypeUpstream ErrorType = "upstream"
	// ErrorTypeTimeout for upstream fetches exceeding their deadline (HTTP 504)
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeStorage for corpus storage/parse errors (HTTP 500)
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeConfiguration for configuration-related errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeInternal for internal system errors (HTTP 500)
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured error with context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Cause     error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Type, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// UserMessage returns the caller-visible message including the cause
func (e *AppError) UserMessage() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// NewError creates a new AppError
func NewError(errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewInputError creates an invalid-input error
func NewInputError(code, message string) *AppError {
	return NewError(ErrorTypeInput, code, message)
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(code, message string) *AppError {
	return NewError(ErrorTypeNotFound, code, message)
}

// NewUpstreamError creates an upstream fetch/dependency error
func NewUpstreamError(code, message string) *AppError {
	return NewError(ErrorTypeUpstream, code, message)
}

// NewTimeoutError creates an upstream timeout error
func NewTimeoutError(code, message string) *AppError {
	return NewError(ErrorTypeTimeout, code, message)
}

// NewStorageError creates a storage error
func NewStorageError(code, message string) *AppError {
	return NewError(ErrorTypeStorage, code, message)
}

// NewInternalError creates an internal system error
func NewInternalError(code, message string) *AppError {
	return NewError(ErrorTypeInternal, code, message)
}

// WrapError wraps an existing error with AppError context
func WrapError(err error, errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Cause:     err,
	}
}

// HTTPStatus maps an error to its HTTP response status. Unclassified
// errors map to 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case ErrorTypeInput:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeUpstream:
		return http.StatusBadGateway
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
