// Package errors provides the structured error types used throughout
// prescan. Errors carry a category, a stable code, and optional context so
// that callers can branch on error kinds without string matching.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeScan       ErrorType = "scan"
	ErrorTypeInternal   ErrorType = "internal"
)

// PrescanError is a structured error type with context.
type PrescanError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *PrescanError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *PrescanError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *PrescanError) Is(target error) bool {
	var t *PrescanError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *PrescanError) WithContext(key string, value interface{}) *PrescanError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithFile adds the source file the error relates to.
func (e *PrescanError) WithFile(path string) *PrescanError {
	e.FilePath = path

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *PrescanError {
	return &PrescanError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *PrescanError {
	return &PrescanError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *PrescanError {
	return &PrescanError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewScanError creates a scan error for a specific source file.
func NewScanError(code, message string, cause error) *PrescanError {
	return &PrescanError{
		Type:        ErrorTypeScan,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *PrescanError {
	return &PrescanError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsIOError checks if an error is I/O-related.
func IsIOError(err error) bool {
	var pe *PrescanError
	if errors.As(err, &pe) {
		return pe.Type == ErrorTypeIO
	}

	return false
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var pe *PrescanError
	if errors.As(err, &pe) {
		return pe.Recoverable
	}

	return false
}

// Common error codes.
const (
	ErrCodeManifestRead     = "ERR_MANIFEST_READ"
	ErrCodeManifestWrite    = "ERR_MANIFEST_WRITE"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeInvalidPath      = "ERR_INVALID_PATH"
	ErrCodeScanFailed       = "ERR_SCAN_FAILED"
	ErrCodeInternalError    = "ERR_INTERNAL"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)
