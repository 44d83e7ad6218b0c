// Package errors provides a lightweight structured error type (PasteError)
// for category-based classification in the publish pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a scpaste error for classification
type ErrorCategory string

const (
	// User-facing input and configuration errors
	CategoryName   ErrorCategory = "name"
	CategoryConfig ErrorCategory = "config"

	// Pipeline errors
	CategoryRender  ErrorCategory = "render"
	CategoryPublish ErrorCategory = "publish"
	CategoryList    ErrorCategory = "list"

	// External system and infrastructure errors
	CategoryNetwork  ErrorCategory = "network"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// PasteError is a structured error with category, retryability, and context
type PasteError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for PasteError
type ContextFields map[string]any

// Error implements the error interface
func (e *PasteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *PasteError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *PasteError) WithContext(key string, value any) *PasteError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new PasteError
func New(category ErrorCategory, severity ErrorSeverity, message string) *PasteError {
	return &PasteError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new PasteError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *PasteError {
	return &PasteError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// WrapRetryable creates a new retryable PasteError that wraps an existing error.
// The core never retries; the flag lets callers decide.
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *PasteError {
	return &PasteError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if pe, ok := err.(*PasteError); ok {
		return pe.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if pe, ok := err.(*PasteError); ok {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a PasteError
func GetCategory(err error) ErrorCategory {
	if pe, ok := err.(*PasteError); ok {
		return pe.Category
	}
	return CategoryInternal
}
