package service

import (
	"errors"

	"github.com/fastlesson/fastlesson-api/internal/store"
)

// isExpectedError reports whether err is an expected condition that should
// pass through to the caller unwrapped, so the API layer can map it to a
// status code with errors.Is.
func isExpectedError(err error) bool {
	return store.IsNotFoundError(err) ||
		store.IsDuplicateError(err) ||
		errors.Is(err, store.ErrInsufficientCredits) ||
		errors.Is(err, store.ErrInvalidEntity)
}
