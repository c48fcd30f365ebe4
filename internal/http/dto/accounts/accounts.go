// Package accounts contiene los DTOs de los endpoints de cuentas.
package accounts

import "time"

// RegisterRequest es el body de POST /v1/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,printascii"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

type RegisterResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest es el body de POST /v1/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=256"`
}

type LoginResponse struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateProfileRequest es el body de PUT /v1/profile. Un campo ausente no se
// modifica.
type UpdateProfileRequest struct {
	Bio       *string `json:"bio,omitempty" validate:"omitnil,max=500"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitnil,omitempty,url,max=2048"`
}

type ProfileResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VerifyEmailResponse struct {
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	Verified        bool   `json:"verified"`
	AlreadyVerified bool   `json:"already_verified,omitempty"`
}
