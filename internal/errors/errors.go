package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess          = 0   // Indicates successful execution.
	ExitErrorGeneric     = 1   // Indicates a generic error.
	ExitErrorTimeout     = 2   // Indicates the operation timed out.
	ExitErrorInvalidData = 3   // Indicates the dataset cannot be integrated.
	ExitErrorConfig      = 4   // Indicates a configuration or input error.
	ExitErrorFetch       = 5   // Indicates the data service could not be queried.
	ExitErrorCanceled    = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// InvalidInputError reports a caller-supplied value that cannot be used, such
// as a non-positive temperature or a malformed command-line argument.
type InvalidInputError struct {
	// Field names the offending input (e.g. "temperature").
	Field string
	// Message explains why the value was rejected.
	Message string
}

// Error returns a formatted message describing the rejected input.
func (e InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for %q: %s", e.Field, e.Message)
}

// NewInvalidInputError creates an InvalidInputError with a formatted message.
func NewInvalidInputError(field, format string, a ...any) error {
	return InvalidInputError{Field: field, Message: fmt.Sprintf(format, a...)}
}

// InvalidDataError reports a cross-section dataset whose content violates the
// curve invariants (negative cross sections, bad energies, too few points).
type InvalidDataError struct {
	Message string
}

// Error returns the error message for an InvalidDataError.
func (e InvalidDataError) Error() string { return "invalid data: " + e.Message }

// NewInvalidDataError creates an InvalidDataError with a formatted message.
func NewInvalidDataError(format string, a ...any) error {
	return InvalidDataError{Message: fmt.Sprintf(format, a...)}
}

// InsufficientDataError reports a curve that is structurally valid but cannot
// support the requested integration (empty or too narrow domain).
type InsufficientDataError struct {
	Message string
}

// Error returns the error message for an InsufficientDataError.
func (e InsufficientDataError) Error() string { return "insufficient data: " + e.Message }

// NewInsufficientDataError creates an InsufficientDataError with a formatted message.
func NewInsufficientDataError(format string, a ...any) error {
	return InsufficientDataError{Message: fmt.Sprintf(format, a...)}
}

// FetchError reports a failure of the nuclear-data service collaborator:
// transport errors, unexpected HTTP status, undecodable payloads or an empty
// selection.
type FetchError struct {
	// Op is the service operation that failed (e.g. "e4list").
	Op string
	// URL is the request URL, if any.
	URL string
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// Message describes failures that have no underlying cause.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a formatted message describing the fetch failure.
func (e FetchError) Error() string {
	msg := "fetch " + e.Op + " failed"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e FetchError) Unwrap() error { return e.Cause }

// CalculationError encapsulates a MACS evaluation failure for one temperature
// while preserving the original cause.
type CalculationError struct {
	// TemperatureKeV is the temperature whose evaluation failed.
	TemperatureKeV float64
	// Cause is the underlying error that triggered this calculation error.
	Cause error
}

// Error returns the error message prefixed with the temperature.
func (e CalculationError) Error() string {
	return fmt.Sprintf("T=%g keV: %v", e.TemperatureKeV, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e CalculationError) Unwrap() error { return e.Cause }

// TimeoutError represents an operation timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Returns nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps an error to the process exit status. Unknown errors map to
// ExitErrorGeneric; nil maps to ExitSuccess.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		inputErr   InvalidInputError
		configErr  ConfigError
		dataErr    InvalidDataError
		insuffErr  InsufficientDataError
		fetchErr   FetchError
		timeoutErr TimeoutError
	)
	switch {
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &inputErr), errors.As(err, &configErr):
		return ExitErrorConfig
	case errors.As(err, &dataErr), errors.As(err, &insuffErr):
		return ExitErrorInvalidData
	case errors.As(err, &fetchErr):
		return ExitErrorFetch
	default:
		return ExitErrorGeneric
	}
}
