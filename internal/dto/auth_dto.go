package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	City     string `json:"city" validate:"omitempty,max=100"`
	Country  string `json:"country" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleSignInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type GoogleAuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	IsNewUser bool         `json:"isNewUser"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type VerifyResponse struct {
	Valid     bool         `json:"valid"`
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// UserResponse is the full view of a user, shown to the user themself and
// to admins.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	AvatarURL   *string   `json:"avatarUrl"`
	City        *string   `json:"city"`
	Country     *string   `json:"country"`
	IsAdmin     bool      `json:"isAdmin"`
	HasPassword bool      `json:"hasPassword"`
	HasGoogle   bool      `json:"hasGoogle"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
