package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/storage"
)

// SaveRefreshToken stores the refresh token, replacing the user's previous one
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		tokens, err := bucket(tx, bucketRefreshTokens)
		if err != nil {
			return err
		}
		users, err := bucket(tx, bucketUsers)
		if err != nil {
			return err
		}

		if users.Get(itob(token.UserID)) == nil {
			return storage.ErrUserNotFound
		}

		record := *token
		record.ExpiresAt = token.ExpiresAt.UTC()
		record.CreatedAt = token.CreatedAt.UTC()

		return put(tokens, itob(token.UserID), record)
	})
}

// GetRefreshToken retrieves the refresh token of a user
func (s *Storage) GetRefreshToken(ctx context.Context, userID int64) (*models.RefreshToken, error) {
	var token *models.RefreshToken

	err := s.db.View(func(tx *bbolt.Tx) error {
		tokens, err := bucket(tx, bucketRefreshTokens)
		if err != nil {
			return err
		}

		data := tokens.Get(itob(userID))
		if data == nil {
			return storage.ErrTokenNotFound
		}

		token = &models.RefreshToken{}
		if err := json.Unmarshal(data, token); err != nil {
			return fmt.Errorf("failed to unmarshal refresh token: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return token, nil
}

// DeleteRefreshToken deletes the refresh token of a user
func (s *Storage) DeleteRefreshToken(ctx context.Context, userID int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		tokens, err := bucket(tx, bucketRefreshTokens)
		if err != nil {
			return err
		}

		key := itob(userID)
		if tokens.Get(key) == nil {
			return storage.ErrTokenNotFound
		}

		if err := tokens.Delete(key); err != nil {
			return fmt.Errorf("failed to delete refresh token: %w", err)
		}

		return nil
	})
}

// DeleteExpiredTokens removes all expired tokens
func (s *Storage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	now := time.Now()
	deleted := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		tokens, err := bucket(tx, bucketRefreshTokens)
		if err != nil {
			return err
		}

		// Сначала собираем ключи: удалять во время обхода курсором нельзя
		var expired [][]byte
		err = tokens.ForEach(func(k, v []byte) error {
			var token models.RefreshToken
			if err := json.Unmarshal(v, &token); err != nil {
				return fmt.Errorf("failed to unmarshal refresh token: %w", err)
			}
			if token.IsExpired(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range expired {
			if err := tokens.Delete(k); err != nil {
				return fmt.Errorf("failed to delete refresh token: %w", err)
			}
		}

		deleted = len(expired)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}
