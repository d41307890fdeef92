package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fastlesson/fastlesson-api/internal/domain"
	"github.com/fastlesson/fastlesson-api/internal/store"
)

// UserService provides user provisioning operations. The API trusts the
// front end for identity, so this is registration bookkeeping rather than
// authentication.
type UserService interface {
	// CreateUser provisions a user with the default credit balance.
	// Returns store.ErrExternalIDExists if the external ID is taken.
	CreateUser(ctx context.Context, externalID string) (*domain.User, error)

	// GetUser retrieves a user by its ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// UserServiceError wraps errors from the user service with context.
type UserServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for UserServiceError.
func (e *UserServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("user service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("user service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *UserServiceError) Unwrap() error {
	return e.Err
}

// NewUserServiceError creates a new UserServiceError. Expected conditions
// are returned directly without wrapping.
func NewUserServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if isExpectedError(err) {
		return err
	}

	return &UserServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// userService implements the UserService interface
type userService struct {
	users  store.UserStore
	logger *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if the user store is nil.
func NewUserService(users store.UserStore, logger *slog.Logger) (UserService, error) {
	if users == nil {
		return nil, &UserServiceError{Operation: "create_service", Message: "users store cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &userService{
		users:  users,
		logger: logger.With("component", "user_service"),
	}, nil
}

// CreateUser implements UserService.CreateUser
func (s *userService) CreateUser(ctx context.Context, externalID string) (*domain.User, error) {
	user, err := domain.NewUser(externalID)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, NewUserServiceError("create_user", "failed to save user", err)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"remaining_generations", user.RemainingGenerations)

	return user, nil
}

// GetUser implements UserService.GetUser
func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewUserServiceError("get_user", "failed to retrieve user", err)
	}
	return user, nil
}
