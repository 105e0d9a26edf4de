package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/gophblog/internal/crypto"
	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/jwt"
	"github.com/iudanet/gophblog/internal/server/storage"
)

// TokenService issues, renews and validates JWT tokens
type TokenService struct {
	jwt     *jwt.Service
	storage storage.TokenStorage
	logger  *slog.Logger
	now     func() time.Time
}

// NewTokenService creates a new TokenService
func NewTokenService(logger *slog.Logger, jwtService *jwt.Service, tokens storage.TokenStorage) *TokenService {
	return &TokenService{
		jwt:     jwtService,
		storage: tokens,
		logger:  logger,
		now:     time.Now,
	}
}

// AccessTokenTTL returns the access token lifetime
func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.jwt.AccessTokenTTL()
}

// IssueAccessToken creates a stateless access token for userID
func (s *TokenService) IssueAccessToken(userID int64) (string, error) {
	token, _, err := s.jwt.GenerateAccessToken(userID)
	if err != nil {
		return "", err
	}
	return token, nil
}

// IssueRefreshToken creates a refresh token and stores it as the user's only one
func (s *TokenService) IssueRefreshToken(ctx context.Context, userID int64) (string, error) {
	token, expiresAt, err := s.jwt.GenerateRefreshToken(userID)
	if err != nil {
		return "", err
	}

	hashed, err := crypto.HashToken(token)
	if err != nil {
		return "", err
	}

	// Храним только хеш, сам токен знает лишь клиент
	refreshToken := &models.RefreshToken{
		UserID:    userID,
		Token:     hashed,
		ExpiresAt: expiresAt,
		CreatedAt: s.now().UTC(),
	}

	if err := s.storage.SaveRefreshToken(ctx, refreshToken); err != nil {
		return "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	return token, nil
}

// RenewAccessToken exchanges the current refresh token for a new access token.
// A token that is not the one stored for its subject is rejected.
func (s *TokenService) RenewAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	stored, err := s.storage.GetRefreshToken(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return "", fmt.Errorf("%w: refresh token revoked", ErrUnauthorized)
		}
		return "", fmt.Errorf("failed to get refresh token: %w", err)
	}

	if err := crypto.VerifyToken(refreshToken, stored.Token); err != nil {
		s.logger.WarnContext(ctx, "Stale refresh token presented", slog.Int64("user_id", userID))
		return "", fmt.Errorf("%w: refresh token superseded", ErrUnauthorized)
	}

	if stored.IsExpired(s.now()) {
		return "", fmt.Errorf("%w: refresh token expired", ErrUnauthorized)
	}

	return s.IssueAccessToken(userID)
}

// ValidateAndExtractSubject returns the user ID of a valid access token
func (s *TokenService) ValidateAndExtractSubject(accessToken string) (int64, error) {
	claims, err := s.jwt.ValidateAccessToken(accessToken)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	return userID, nil
}

// RevokeRefreshToken deletes the user's refresh token. Revoking a missing token is not an error.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, userID int64) error {
	if err := s.storage.DeleteRefreshToken(ctx, userID); err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// PruneExpired deletes expired refresh tokens and returns how many were removed
func (s *TokenService) PruneExpired(ctx context.Context) (int, error) {
	deleted, err := s.storage.DeleteExpiredTokens(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to prune refresh tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "Expired refresh tokens pruned", slog.Int("count", deleted))

	return deleted, nil
}
