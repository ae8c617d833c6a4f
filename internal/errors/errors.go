// Package errors defines custom error types for better error handling and debugging.
// StreamError provides context-aware error reporting with type classification.
package errors

import (
	stderrors "errors"
	"fmt"
)

// StreamError represents errors that occur while serving addon requests
type StreamError struct {
	Type    string
	Message string
	Cause   error
}

func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}

// Is matches on Type so sentinel StreamErrors work with errors.Is.
func (e *StreamError) Is(target error) bool {
	t, ok := target.(*StreamError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// Error type constants
const (
	ErrorTypeConfigurationInvalid = "CONFIGURATION_INVALID"
	ErrorTypeAPIKeyMissing        = "API_KEY_MISSING"
	ErrorTypeNoSourcesAvailable   = "NO_SOURCES_AVAILABLE"
	ErrorTypeAdapterFailed        = "ADAPTER_FAILED"
	ErrorTypeUnsupported          = "UNSUPPORTED_OPERATION"
	ErrorTypeTimeout              = "TIMEOUT"
	ErrorTypeInvalidID            = "INVALID_ID"
)

// ErrNoSourcesAvailable is returned when every enabled adapter failed.
var ErrNoSourcesAvailable = NewStreamError(ErrorTypeNoSourcesAvailable, "no sources available", nil)

// NewStreamError creates a new StreamError
func NewStreamError(errorType, message string, cause error) *StreamError {
	return &StreamError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigurationError creates a configuration-related error
func NewConfigurationError(message string, cause error) *StreamError {
	return NewStreamError(ErrorTypeConfigurationInvalid, message, cause)
}

// NewAPIKeyMissingError creates an API key missing error
func NewAPIKeyMissingError(service string) *StreamError {
	return NewStreamError(ErrorTypeAPIKeyMissing, fmt.Sprintf("API key missing for %s", service), nil)
}

// NewAdapterError wraps a failure of a single upstream adapter
func NewAdapterError(adapterID string, cause error) *StreamError {
	return NewStreamError(ErrorTypeAdapterFailed, fmt.Sprintf("adapter %s failed", adapterID), cause)
}

// NewUnsupportedError reports an operation an adapter does not implement
func NewUnsupportedError(operation string) *StreamError {
	return NewStreamError(ErrorTypeUnsupported, fmt.Sprintf("operation not supported: %s", operation), nil)
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(operation string) *StreamError {
	return NewStreamError(ErrorTypeTimeout, fmt.Sprintf("Operation timeout: %s", operation), nil)
}

// NewInvalidIDError creates an invalid ID error
func NewInvalidIDError(id string) *StreamError {
	return NewStreamError(ErrorTypeInvalidID, fmt.Sprintf("Invalid ID format: %s", id), nil)
}

// IsType reports whether err wraps a StreamError of the given type.
func IsType(err error, errorType string) bool {
	var se *StreamError
	if stderrors.As(err, &se) {
		return se.Type == errorType
	}
	return false
}
