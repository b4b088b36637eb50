package dto

import (
	"time"

	"github.com/guardline/request-service/internal/domain"
)

// RegisterRequest payload for customer sign-up.
type RegisterRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Password   string          `json:"password"`
	OutletName string          `json:"outlet_name"`
	Address    string          `json:"address"`
	Location   domain.Location `json:"location"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLoginRequest payload.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// AuthResponse carries a signed token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	OutletName string          `json:"outlet_name"`
	Address    string          `json:"address"`
	Location   domain.Location `json:"location"`
}
