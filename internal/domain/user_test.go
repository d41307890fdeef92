package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("valid user", func(t *testing.T) {
		t.Parallel()

		user, err := NewUser("frontend-7141")

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "frontend-7141", user.ExternalID)
		assert.Equal(t, DefaultRemainingGenerations, user.RemainingGenerations)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("empty external ID", func(t *testing.T) {
		t.Parallel()

		_, err := NewUser("")
		assert.ErrorIs(t, err, ErrEmptyExternalID)
	})
}

func TestUser_Validate(t *testing.T) {
	t.Parallel()

	user, err := NewUser("frontend-7141")
	require.NoError(t, err)

	user.RemainingGenerations = -1
	assert.ErrorIs(t, user.Validate(), ErrNegativeGenerations)

	user.RemainingGenerations = 0
	assert.NoError(t, user.Validate())
}
