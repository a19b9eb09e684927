package dto

import (
	"time"

	"github.com/Nabeerak/hackathon-todo/internal/domain/user"
	"github.com/google/uuid"
)

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email" example:"ada@example.com"`
	Username    string `json:"username" binding:"required,min=3,max=50" example:"ada"`
	Password    string `json:"password" binding:"required,min=8" example:"correct-horse-battery"`
	DisplayName string `json:"display_name" example:"Ada Lovelace"`
}

// LoginRequest represents the request body for authenticating
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuthResponse represents a successful login or registration
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ToUserResponse converts a domain user to its API shape
func ToUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
