package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Entity-specific variants below wrap it so callers can match
	// either way.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or references a row that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInsufficientCredits is returned when a credit spend is attempted
	// against a user whose balance is already zero.
	ErrInsufficientCredits = errors.New("insufficient generation credits")

	// Entity-specific "not found" errors

	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrLessonNotFound     = fmt.Errorf("%w: lesson", ErrNotFound)
	ErrSectionNotFound    = fmt.Errorf("%w: section", ErrNotFound)
	ErrProgressNotFound   = fmt.Errorf("%w: generation progress", ErrNotFound)
	ErrImproveJobNotFound = fmt.Errorf("%w: improve job", ErrNotFound)

	// ErrExternalIDExists indicates that a user with the given external ID
	// already exists.
	ErrExternalIDExists = fmt.Errorf("%w: external id", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
