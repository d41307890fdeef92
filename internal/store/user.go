package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fastlesson/fastlesson-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrExternalIDExists if the external ID is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// TrySpendGeneration atomically decrements the user's credit balance by
	// one. Returns ErrInsufficientCredits when the balance is zero and
	// ErrUserNotFound when the user does not exist.
	TrySpendGeneration(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) UserStore
}
