// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Input DTOs ---
// Field presence and shape are checked by the delivery layer's validator
// before any of these reach a use case.

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8"`
	FirstName string   `json:"firstName" validate:"required"`
	LastName  string   `json:"lastName" validate:"required"`
	Roles     []string `json:"roles" validate:"omitempty,dive,oneof=patient doctor nurse admin"`
}

// LoginInput defines the data required to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenInput carries the refresh token presented for rotation.
type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// --- Output DTOs ---

// UserSummary is the account projection returned by Register and Login.
// It never carries the password hash or the refresh token.
type UserSummary struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Roles     []string  `json:"roles"`
	Status    string    `json:"status"`
}

// AuthOutput is the shared result shape of Register and Login.
type AuthOutput struct {
	User         *UserSummary `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// RefreshTokenOutput carries the newly minted access token. The refresh token
// itself is never rotated by the refresh operation.
type RefreshTokenOutput struct {
	AccessToken string `json:"accessToken"`
}

// ProfileOutput is the read-only account projection returned by GetProfile.
type ProfileOutput struct {
	UserID      uuid.UUID  `json:"userId"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Roles       []string   `json:"roles"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"lastLogin"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// AuthUsecase defines the five session lifecycle transitions.
// This is the contract that the delivery layer (e.g., API handlers) depends on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	RefreshToken(ctx context.Context, input *RefreshTokenInput) (*RefreshTokenOutput, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileOutput, error)
}
