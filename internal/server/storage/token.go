package storage

import (
	"context"

	"github.com/iudanet/gophblog/internal/models"
)

// TokenStorage defines interface for refresh token persistence
type TokenStorage interface {
	// SaveRefreshToken stores the refresh token of a user
	// Any previous token of the same user is replaced (last writer wins)
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken retrieves the refresh token of a user
	// Returns ErrTokenNotFound if user has no token
	GetRefreshToken(ctx context.Context, userID int64) (*models.RefreshToken, error)

	// DeleteRefreshToken deletes the refresh token of a user
	// Returns ErrTokenNotFound if user has no token
	DeleteRefreshToken(ctx context.Context, userID int64) error

	// DeleteExpiredTokens removes all expired tokens
	// Returns number of deleted tokens
	DeleteExpiredTokens(ctx context.Context) (int, error)
}
