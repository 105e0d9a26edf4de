package storage

import (
	"context"
)

// AuthStorage defines interface for storing the client session
type AuthStorage interface {
	// SaveAuth stores session data, replacing the previous one
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored session data
	// Returns ErrAuthNotFound if no session exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored session data (logout)
	// Returns ErrAuthNotFound if no session exists
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated checks that a session with a refresh token exists
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData represents the client session: the logged in email and its tokens
type AuthData struct {
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // unix время истечения access token
	ExpiresIn    int64  `json:"expires_in"` // время жизни access token в секундах
}
