package booking

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"bookxe/internal/modules/approval"
	"bookxe/internal/repository"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("booking not found")
	ErrConflict    = errors.New("booking was changed concurrently")
	ErrPersistence = errors.New("persistence failure")

	ErrInvalidTransition = approval.ErrInvalidTransition
	ErrAuthorization     = approval.ErrUnauthorized
)

// ValidationError lists the offending fields and their failed rules.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// storeError maps a store failure onto the orchestrator taxonomy. The
// original error stays in the chain.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrStatusMismatch):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrMissingReference):
		// vehicle_id is the only reference a booking write carries.
		return fmt.Errorf("%s: %w", op, &ValidationError{Fields: map[string]string{"vehicle_id": "exists"}})
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
}

// ErrorCode returns the taxonomy code for err, or "" for nil.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	case errors.Is(err, ErrAuthorization):
		return "AUTHORIZATION"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	default:
		return "PERSISTENCE_FAILURE"
	}
}

func httpStatus(code string) int {
	switch code {
	case "VALIDATION":
		return http.StatusBadRequest
	case "AUTHORIZATION":
		return http.StatusForbidden
	case "NOT_FOUND":
		return http.StatusNotFound
	case "CONFLICT":
		return http.StatusConflict
	case "INVALID_TRANSITION":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
