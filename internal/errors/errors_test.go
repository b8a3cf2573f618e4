// Package apperrors provides tests for application error types.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         error
		expected    string
		checkTypeAs bool
	}{
		{
			name:     "Error returns message",
			err:      ConfigError{Message: "invalid flag value"},
			expected: "invalid flag value",
		},
		{
			name:     "NewConfigError creates formatted error",
			err:      NewConfigError("invalid value %d for flag %s", 42, "--parallel"),
			expected: "invalid value 42 for flag --parallel",
		},
		{
			name:        "ConfigError type assertion",
			err:         NewConfigError("test error"),
			expected:    "test error",
			checkTypeAs: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
			if tt.checkTypeAs {
				var configErr ConfigError
				if !errors.As(tt.err, &configErr) {
					t.Error("expected error to be ConfigError type")
				}
			}
		})
	}
}

func TestDataErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "InvalidInputError",
			err:      NewInvalidInputError("temperature", "must be positive, got %g", -1.0),
			expected: `invalid input for "temperature": must be positive, got -1`,
		},
		{
			name:     "InvalidDataError",
			err:      NewInvalidDataError("%d distinct energies, need at least 2", 1),
			expected: "invalid data: 1 distinct energies, need at least 2",
		},
		{
			name:     "InsufficientDataError",
			err:      NewInsufficientDataError("domain is empty"),
			expected: "insufficient data: domain is empty",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
		})
	}
}

func TestFetchError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      FetchError
		expected string
	}{
		{
			name:     "with status",
			err:      FetchError{Op: "e4list", StatusCode: 503},
			expected: "fetch e4list failed (HTTP 503)",
		},
		{
			name:     "with message",
			err:      FetchError{Op: "e4list", Message: `no section for library "JEFF-9"`},
			expected: `fetch e4list failed: no section for library "JEFF-9"`,
		},
		{
			name:     "with cause",
			err:      FetchError{Op: "e4sig", Cause: errors.New("connection refused")},
			expected: "fetch e4sig failed: connection refused",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}

	t.Run("Unwrap exposes cause", func(t *testing.T) {
		t.Parallel()
		err := FetchError{Op: "e4sig", Cause: context.DeadlineExceeded}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Error("errors.Is should find the cause through FetchError")
		}
	})
}

func TestCalculationError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		cause       error
		expectedMsg string
		checkIs     error
		checkUnwrap bool
	}{
		{
			name:        "Error prefixes temperature",
			cause:       errors.New("domain is empty"),
			expectedMsg: "T=30 keV: domain is empty",
		},
		{
			name:        "Unwrap returns cause",
			cause:       errors.New("original error"),
			expectedMsg: "T=30 keV: original error",
			checkUnwrap: true,
		},
		{
			name:        "errors.Is works with wrapped error",
			cause:       context.Canceled,
			expectedMsg: "T=30 keV: context canceled",
			checkIs:     context.Canceled,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CalculationError{TemperatureKeV: 30, Cause: tt.cause}

			if err.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, err.Error())
			}

			if tt.checkUnwrap && err.Unwrap() != tt.cause {
				t.Error("Unwrap should return the original cause")
			}

			if tt.checkIs != nil && !errors.Is(err, tt.checkIs) {
				t.Errorf("errors.Is should find %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()
	var err error = TimeoutError{Operation: "fetch", Limit: 30 * time.Second}
	if got, want := err.Error(), `operation "fetch" timed out after 30s`; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	var timeoutErr TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatal("expected error to be TimeoutError type")
	}
	if timeoutErr.Limit != 30*time.Second {
		t.Errorf("expected Limit 30s, got %v", timeoutErr.Limit)
	}
}

func TestErrorsAsWithWrapping(t *testing.T) {
	t.Parallel()

	t.Run("InsufficientDataError wrapped in CalculationError", func(t *testing.T) {
		t.Parallel()
		err := CalculationError{TemperatureKeV: 8, Cause: NewInsufficientDataError("too narrow")}

		var insuffErr InsufficientDataError
		if !errors.As(err, &insuffErr) {
			t.Error("errors.As should find InsufficientDataError through CalculationError")
		}
	})

	t.Run("InvalidInputError wrapped with WrapError", func(t *testing.T) {
		t.Parallel()
		err := WrapError(NewInvalidInputError("temperatures", "empty entry"), "config check failed")

		var inputErr InvalidInputError
		if !errors.As(err, &inputErr) {
			t.Error("errors.As should find InvalidInputError through WrapError")
		}
		if inputErr.Field != "temperatures" {
			t.Errorf("expected Field %q, got %q", "temperatures", inputErr.Field)
		}
	})
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		original    error
		format      string
		args        []any
		expectedMsg string
		expectNil   bool
		checkIs     error
	}{
		{
			name:        "wraps error with context",
			original:    errors.New("file not found"),
			format:      "failed to load config",
			expectedMsg: "failed to load config: file not found",
		},
		{
			name:        "preserves error chain",
			original:    context.DeadlineExceeded,
			format:      "operation timed out",
			expectedMsg: "operation timed out: context deadline exceeded",
			checkIs:     context.DeadlineExceeded,
		},
		{
			name:      "returns nil for nil error",
			original:  nil,
			format:    "some context",
			expectNil: true,
		},
		{
			name:        "supports format arguments",
			original:    errors.New("connection reset"),
			format:      "failed to connect to %s:%d",
			args:        []any{"localhost", 8080},
			expectedMsg: "failed to connect to localhost:8080: connection reset",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := WrapError(tt.original, tt.format, tt.args...)

			if tt.expectNil {
				if wrapped != nil {
					t.Error("WrapError(nil, ...) should return nil")
				}
				return
			}

			if wrapped == nil {
				t.Fatal("wrapped error should not be nil")
			}

			if wrapped.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, wrapped.Error())
			}

			if tt.checkIs != nil && !errors.Is(wrapped, tt.checkIs) {
				t.Errorf("wrapped error should preserve %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"context.Canceled", context.Canceled, true},
		{"context.DeadlineExceeded", context.DeadlineExceeded, true},
		{"wrapped context.Canceled", WrapError(context.Canceled, "operation canceled"), true},
		{"regular error", errors.New("some error"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := IsContextError(tt.err)
			if result != tt.expected {
				t.Errorf("IsContextError(%v) = %v, expected %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitErrorGeneric},
		{"invalid input", NewInvalidInputError("temperature", "must be positive"), ExitErrorConfig},
		{"config", NewConfigError("bad flag"), ExitErrorConfig},
		{"invalid data", NewInvalidDataError("negative cross section"), ExitErrorInvalidData},
		{"insufficient data wrapped", CalculationError{TemperatureKeV: 8, Cause: NewInsufficientDataError("x")}, ExitErrorInvalidData},
		{"fetch", FetchError{Op: "e4list", StatusCode: 500}, ExitErrorFetch},
		{"fetch deadline", FetchError{Op: "e4sig", Cause: context.DeadlineExceeded}, ExitErrorTimeout},
		{"timeout", TimeoutError{Operation: "fetch", Limit: time.Second}, ExitErrorTimeout},
		{"canceled", fmt.Errorf("stop: %w", context.Canceled), ExitErrorCanceled},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodes(t *testing.T) {
	t.Parallel()
	codes := map[string]int{
		"ExitSuccess":          ExitSuccess,
		"ExitErrorGeneric":     ExitErrorGeneric,
		"ExitErrorTimeout":     ExitErrorTimeout,
		"ExitErrorInvalidData": ExitErrorInvalidData,
		"ExitErrorConfig":      ExitErrorConfig,
		"ExitErrorFetch":       ExitErrorFetch,
		"ExitErrorCanceled":    ExitErrorCanceled,
	}

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess should be 0, got %d", ExitSuccess)
	}
	if ExitErrorCanceled != 130 {
		t.Errorf("ExitErrorCanceled should be 130 (SIGINT convention), got %d", ExitErrorCanceled)
	}

	seen := make(map[int]string)
	for name, code := range codes {
		if existing, ok := seen[code]; ok {
			t.Errorf("duplicate exit code %d: %s and %s", code, existing, name)
		}
		seen[code] = name
	}
}
