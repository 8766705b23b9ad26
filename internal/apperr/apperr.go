package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for the error classes the API distinguishes. Services wrap these
// with fmt.Errorf("...: %w", ...) and handlers translate them to HTTP codes.
var (
	// ErrNotFound marks a missing user/module/department/question.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks malformed input (option counts, thresholds, etc.).
	ErrValidation = errors.New("validation failed")
	// ErrAttemptLimit marks a test submission past the module's attempt cap.
	ErrAttemptLimit = errors.New("attempt limit exceeded")
	// ErrConflict marks a write race that survived the internal retry.
	ErrConflict = errors.New("concurrency conflict")
)

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

func AttemptLimitf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrAttemptLimit)
}

func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// Status maps an error to its HTTP status. Unrecognized errors are 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAttemptLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the short machine-readable code used in error envelopes.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAttemptLimit):
		return "attempt_limit_exceeded"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal_error"
	}
}
