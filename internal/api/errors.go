package api

import (
	"errors"
	"net/http"

	"github.com/jobscout/companion-api/internal/domain"
	"github.com/jobscout/companion-api/internal/platform/remote"
	"github.com/jobscout/companion-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrEmptyTaskID),
		errors.Is(err, domain.ErrEmptyJobID),
		errors.Is(err, domain.ErrInvalidTaskStatus):
		return http.StatusBadRequest

	// The scoring service refused the request
	case errors.Is(err, remote.ErrRejected):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal
// details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Task not found"

	case errors.Is(err, domain.ErrEmptyJobID):
		return "Job ID is required"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrEmptyTaskID),
		errors.Is(err, domain.ErrInvalidTaskStatus):
		return "Invalid task data"

	case errors.Is(err, remote.ErrRejected):
		return "Scoring service rejected the request"

	default:
		return "An unexpected error occurred"
	}
}
