package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
	"github.com/harborgoods/storefront-backend/pkg/enums"
)

// UserDTO is the transport-facing shape of a user; credentials and the
// security answer never cross this boundary.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Username  string         `json:"username"`
	Email     string         `json:"email"`
	Phone     *string        `json:"phone,omitempty"`
	Question  *string        `json:"question,omitempty"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

// FromModel converts a persisted user into its transport shape.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Phone:     user.Phone,
		Question:  user.Question,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// RegisterRequest captures the payload for onboarding a new customer.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=64"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Phone    *string `json:"phone,omitempty"`
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the token pair and sanitized user after login.
type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         *UserDTO `json:"user"`
}

// CheckAnswerRequest carries a security-question answer attempt.
type CheckAnswerRequest struct {
	Username string `json:"username" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// ForgetResetRequest resets a forgotten password using a minted token.
type ForgetResetRequest struct {
	Username    string `json:"username" validate:"required"`
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPasswordRequest rotates a password for an authenticated user.
type ResetPasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UpdateInformationRequest carries the mutable profile fields.
type UpdateInformationRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty"`
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
}
