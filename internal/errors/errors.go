package errors

import (
	"fmt"
)

// ScoutError is the structured error type for scout.
// It carries a stable code, a category, and an optional cause so
// callers can decide whether to log, skip, or escalate.
type ScoutError struct {
	// Code is the unique error code (e.g., "ERR_203_CORRUPT_INDEX").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Provider, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *ScoutError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ScoutError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
func (e *ScoutError) Is(target error) bool {
	if t, ok := target.(*ScoutError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ScoutError) WithDetail(key, value string) *ScoutError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new ScoutError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *ScoutError {
	return &ScoutError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a ScoutError from an existing error.
// The error's message becomes the ScoutError message.
func Wrap(code string, err error) *ScoutError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*ScoutError); ok {
		return se.Retryable
	}
	return false
}

// GetCode extracts the error code from a ScoutError.
// Returns empty string if not a ScoutError.
func GetCode(err error) string {
	if se, ok := err.(*ScoutError); ok {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category from a ScoutError.
// Returns empty string if not a ScoutError.
func GetCategory(err error) Category {
	if se, ok := err.(*ScoutError); ok {
		return se.Category
	}
	return ""
}
