package api

import (
	"errors"
	"net/http"

	"github.com/fastlesson/fastlesson-api/internal/api/shared"
	"github.com/fastlesson/fastlesson-api/internal/domain"
	"github.com/fastlesson/fastlesson-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Credit exhaustion
	case errors.Is(err, store.ErrInsufficientCredits):
		return http.StatusPaymentRequired

	// Conflict errors
	case store.IsDuplicateError(err):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		isDomainValidationError(err):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrLessonNotFound):
		return "Lesson not found"
	case errors.Is(err, store.ErrSectionNotFound):
		return "Section not found"
	case errors.Is(err, store.ErrProgressNotFound):
		return "Generation progress not found"
	case errors.Is(err, store.ErrImproveJobNotFound):
		return "Improvement job not found"
	case store.IsNotFoundError(err):
		return "Resource not found"
	case errors.Is(err, store.ErrInsufficientCredits):
		return "No generation credits remaining"
	case errors.Is(err, store.ErrExternalIDExists):
		return "A user with this external ID already exists"
	case store.IsDuplicateError(err):
		return "Resource already exists"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"
	case isDomainValidationError(err):
		return err.Error()
	default:
		return "An internal error occurred"
	}
}

// RespondWithServiceError maps err to a status code and a safe message and
// writes the error response, logging the underlying error.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// isDomainValidationError reports whether err is one of the domain's
// request-shape validation errors, whose messages are safe to expose.
func isDomainValidationError(err error) bool {
	for _, sentinel := range domainValidationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

var domainValidationErrors = []error{
	domain.ErrEmptyLessonCreatorID,
	domain.ErrEmptyLessonTitle,
	domain.ErrInvalidSubject,
	domain.ErrInvalidLevel,
	domain.ErrInvalidImproveMode,
	domain.ErrEmptyExternalID,
	domain.ErrNegativeGenerations,
}
