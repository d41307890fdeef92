package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fastlesson/fastlesson-api/internal/api/shared"
	"github.com/fastlesson/fastlesson-api/internal/domain"
	"github.com/fastlesson/fastlesson-api/internal/service"
)

// CreateUserRequest represents the request body for provisioning a user
type CreateUserRequest struct {
	ExternalID string `json:"external_id" validate:"required,min=1,max=255"`
}

// UserResponse represents the response data for a user
type UserResponse struct {
	ID                   string    `json:"id"`
	ExternalID           string    `json:"external_id"`
	RemainingGenerations int       `json:"remaining_generations"`
	CreatedAt            time.Time `json:"created_at"`
}

// UserHandler handles user provisioning HTTP requests
type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

// CreateUser handles POST /api/users requests
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req.ExternalID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, userToResponse(user))
}

// GetUser handles GET /api/users/{id} requests
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:                   user.ID.String(),
		ExternalID:           user.ExternalID,
		RemainingGenerations: user.RemainingGenerations,
		CreatedAt:            user.CreatedAt,
	}
}
