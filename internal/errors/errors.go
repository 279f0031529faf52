// Package errors provides a lightweight structured error type (VDMError)
// for category-based classification in the bootstrap and HTTP adapters.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a VDM error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Filesystem and startup errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryPermission ErrorCategory = "permission"
	CategoryLoad       ErrorCategory = "load"

	// Runtime and infrastructure errors
	CategoryState    ErrorCategory = "state"
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// ContextFields carries structured context for VDMError
type ContextFields map[string]any

// VDMError is a structured error with category, severity, and context
type VDMError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// Error implements the error interface
func (e *VDMError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *VDMError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *VDMError) WithContext(key string, value any) *VDMError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new VDMError
func New(category ErrorCategory, severity ErrorSeverity, message string) *VDMError {
	return &VDMError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new VDMError wrapping an underlying cause
func Wrap(cause error, category ErrorCategory, severity ErrorSeverity, message string) *VDMError {
	return &VDMError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    cause,
	}
}
