package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds the credentials submitted by the client.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the session token and the logged-in account.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   *Account  `json:"account"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// SessionClaims is the payload of the session token. ID (jti) identifies the session that issued it.
type SessionClaims struct {
	UserID  int64    `json:"user_id"`
	Role    UserRole `json:"role"`
	Offline bool     `json:"offline,omitempty"`
	jwt.RegisteredClaims
}
