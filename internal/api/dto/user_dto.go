package dto

import "github.com/spec-kit/gatelaunch/internal/domain"

// SignupRequest payload for new users.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse wraps the public user shape returned by auth endpoints.
type UserResponse struct {
	User domain.PublicUser `json:"user"`
}
