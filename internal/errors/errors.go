// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrUnknownUser indicates no profile has been submitted for the user ID.
	// Callers answer with guidance instead of failing.
	ErrUnknownUser = errors.New("unknown user")

	// ErrDatasetLoad indicates the dataset source could not be read.
	// Loading degrades to an empty dataset; this is never fatal.
	ErrDatasetLoad = errors.New("dataset load failed")

	// ErrFieldParse indicates a dataset field could not be coerced to a number.
	// The value is treated as absent.
	ErrFieldParse = errors.New("field parse failed")

	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")
)

// IsUnknownUser reports whether err is or wraps ErrUnknownUser.
func IsUnknownUser(err error) bool { return errors.Is(err, ErrUnknownUser) }

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsRateLimitExceeded reports whether err is or wraps ErrRateLimitExceeded.
func IsRateLimitExceeded(err error) bool { return errors.Is(err, ErrRateLimitExceeded) }

// IsInvalidInput reports whether err is or wraps ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// DatasetLoadError describes why a dataset source yielded no rows.
type DatasetLoadError struct {
	Source string
	Err    error
}

func (e *DatasetLoadError) Error() string {
	return fmt.Sprintf("dataset load failed (source=%s): %v", e.Source, e.Err)
}

func (e *DatasetLoadError) Unwrap() error {
	return e.Err
}

// Is makes every DatasetLoadError match ErrDatasetLoad.
func (e *DatasetLoadError) Is(target error) bool {
	return target == ErrDatasetLoad
}

// NewDatasetLoadError creates a new dataset load error.
func NewDatasetLoadError(source string, err error) *DatasetLoadError {
	return &DatasetLoadError{Source: source, Err: err}
}

// FieldParseError records a single numeric field that could not be parsed.
type FieldParseError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldParseError) Unwrap() error {
	return e.Err
}

// Is makes every FieldParseError match ErrFieldParse.
func (e *FieldParseError) Is(target error) bool {
	return target == ErrFieldParse
}

// NewFieldParseError creates a new field parse error.
func NewFieldParseError(field, value string, err error) *FieldParseError {
	return &FieldParseError{Field: field, Value: value, Err: err}
}
