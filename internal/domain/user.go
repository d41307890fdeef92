package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for User
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyExternalID     = errors.New("user external ID cannot be empty")
	ErrNegativeGenerations = errors.New("remaining generations cannot be negative")
)

// DefaultRemainingGenerations is the credit balance granted to new users.
const DefaultRemainingGenerations = 10

// User is a consumer of the generation service, identified by the external
// ID the chat front-end knows them by. RemainingGenerations is the credit
// counter spent once per accepted lesson generation.
type User struct {
	ID                   uuid.UUID `json:"id"`
	ExternalID           string    `json:"external_id"`
	RemainingGenerations int       `json:"remaining_generations"`
	CreatedAt            time.Time `json:"created_at"`
}

// NewUser creates a new User with the default credit balance.
// Returns an error if validation fails.
func NewUser(externalID string) (*User, error) {
	user := &User{
		ID:                   uuid.New(),
		ExternalID:           externalID,
		RemainingGenerations: DefaultRemainingGenerations,
		CreatedAt:            time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.ExternalID == "" {
		return ErrEmptyExternalID
	}

	if u.RemainingGenerations < 0 {
		return ErrNegativeGenerations
	}

	return nil
}
