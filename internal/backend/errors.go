package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexanderramin/fieldbridge/internal/domain"
)

var (
	// ErrNetwork indicates the office API could not be reached.
	ErrNetwork = errors.New("office api unreachable")

	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout = errors.New("office api request timed out")

	// ErrCanceled indicates the caller abandoned the request. Callers
	// swallow it silently.
	ErrCanceled = errors.New("request canceled")

	// ErrOutcomeUnknown indicates a non-idempotent call may or may not have
	// been applied. It must not be retried blindly.
	ErrOutcomeUnknown = errors.New("request outcome unknown")

	// ErrNotFound and ErrForbidden share identity with the domain sentinels
	// so local and remote backends report them the same way.
	ErrNotFound  = domain.ErrNotFound
	ErrForbidden = domain.ErrForbidden
)

// APIError is a non-2xx response from the office API.
type APIError struct {
	Status int
	Code   string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("office api error %d", e.Status)
	}
	return fmt.Sprintf("office api error %d: %s", e.Status, e.Detail)
}

// Unwrap maps the response onto the shared taxonomy, so errors.Is works the
// same for remote and local failures.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case CodeValidation:
		return domain.ErrValidation
	case CodeInvalidTransition:
		return domain.ErrInvalidTransition
	}
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// Error codes carried in API error bodies.
const (
	CodeValidation        = "validation_error"
	CodeInvalidTransition = "invalid_transition"
	CodeNotFound          = "not_found"
	CodeForbidden         = "forbidden"
	CodeConflict          = "conflict"
	CodeInternal          = "internal_error"
)

// IsCancellation reports whether err stems from an abandoned request. Such
// errors are never shown to the user.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// IsTransient reports whether a manual retry might succeed.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrTimeout)
}
