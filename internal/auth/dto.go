package auth

import "github.com/fkhayef/groupsplit/internal/user"

// RegisterRequest creates a self-service account
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest exchanges credentials for a session
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned alongside the session cookie
type LoginResponse struct {
	User  *user.UserResponse `json:"user"`
	Token string             `json:"token"`
}
