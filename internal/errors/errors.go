// Package errors provides structured error handling with context propagation and HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeUnsupportedProtocol indicates a handshake with an unsupported protocol version (HTTP 400)
	TypeUnsupportedProtocol ErrorType = "unsupported_protocol"
	// TypeInvalidCredentials indicates a failed token validation (HTTP 401)
	TypeInvalidCredentials ErrorType = "invalid_credentials"
	// TypeChannelForbidden indicates a connection attempt to a restricted channel (HTTP 403)
	TypeChannelForbidden ErrorType = "channel_forbidden"
	// TypeNotFound indicates an unknown channel or resource (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeLimitExceeded indicates a connection limit was hit (HTTP 429)
	TypeLimitExceeded ErrorType = "limit_exceeded"
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeInternal indicates server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeUnsupportedProtocol, TypeValidation:
		return http.StatusBadRequest
	case TypeInvalidCredentials:
		return http.StatusUnauthorized
	case TypeChannelForbidden:
		return http.StatusForbidden
	case TypeNotFound:
		return http.StatusNotFound
	case TypeLimitExceeded:
		return http.StatusTooManyRequests
	case TypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// UnsupportedProtocolError creates a rejection for a bad protocol version (HTTP 400).
func UnsupportedProtocolError(message string) *Error {
	return &Error{Type: TypeUnsupportedProtocol, Message: message, Context: make(map[string]any)}
}

// InvalidCredentialsError creates a rejection for a failed token check (HTTP 401).
func InvalidCredentialsError(message string, cause error) *Error {
	return &Error{Type: TypeInvalidCredentials, Message: message, Cause: cause, Context: make(map[string]any)}
}

// ChannelForbiddenError creates a rejection for a restricted channel (HTTP 403).
func ChannelForbiddenError(message string) *Error {
	return &Error{Type: TypeChannelForbidden, Message: message, Context: make(map[string]any)}
}

// NotFoundError creates a new not-found error (HTTP 404).
func NotFoundError(message string) *Error {
	return &Error{Type: TypeNotFound, Message: message, Context: make(map[string]any)}
}

// LimitExceededError creates a rejection for a connection limit (HTTP 429).
func LimitExceededError(message string) *Error {
	return &Error{Type: TypeLimitExceeded, Message: message, Context: make(map[string]any)}
}

// ValidationError creates a new validation error (HTTP 400).
func ValidationError(message string) *Error {
	return &Error{Type: TypeValidation, Message: message, Context: make(map[string]any)}
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return &Error{Type: TypeInternal, Message: message, Cause: cause, Context: make(map[string]any)}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse is the JSON shape returned to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal server error", err)
}
