package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/storage"
)

func TestTokenStorage_SaveRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, "tokens@example.com")

	tests := []struct {
		name  string
		token *models.RefreshToken
	}{
		{
			name: "save new refresh token",
			token: &models.RefreshToken{
				Token:     "token123",
				UserID:    userID,
				ExpiresAt: time.Now().Add(24 * time.Hour),
				CreatedAt: time.Now(),
			},
		},
		{
			name: "replace existing token of the same user",
			token: &models.RefreshToken{
				Token:     "token456",
				UserID:    userID,
				ExpiresAt: time.Now().Add(48 * time.Hour),
				CreatedAt: time.Now(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SaveRefreshToken(ctx, tt.token)
			require.NoError(t, err)

			// Хранится только последний токен пользователя
			retrieved, err := s.GetRefreshToken(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, tt.token.Token, retrieved.Token)
			assert.Equal(t, tt.token.UserID, retrieved.UserID)
			assert.WithinDuration(t, tt.token.ExpiresAt, retrieved.ExpiresAt, time.Second)
		})
	}
}

func TestTokenStorage_GetRefreshToken_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, "notoken@example.com")

	retrieved, err := s.GetRefreshToken(ctx, userID)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	assert.Nil(t, retrieved)
}

func TestTokenStorage_DeleteRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, "delete@example.com")

	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     "to-delete",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}))

	require.NoError(t, s.DeleteRefreshToken(ctx, userID))

	_, err := s.GetRefreshToken(ctx, userID)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)

	// Повторное удаление
	err = s.DeleteRefreshToken(ctx, userID)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestTokenStorage_DeleteExpiredTokens(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	expiredUser := createTestUser(t, ctx, s, "expired@example.com")
	validUser := createTestUser(t, ctx, s, "valid@example.com")

	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     "expired",
		UserID:    expiredUser,
		ExpiresAt: time.Now().Add(-2 * time.Hour),
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     "valid",
		UserID:    validUser,
		ExpiresAt: time.Now().Add(2 * time.Hour),
		CreatedAt: time.Now(),
	}))

	deleted, err := s.DeleteExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = s.GetRefreshToken(ctx, expiredUser)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)

	retrieved, err := s.GetRefreshToken(ctx, validUser)
	require.NoError(t, err)
	assert.Equal(t, "valid", retrieved.Token)
}
