package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophblog/internal/client/storage"
)

// Клиент хранит ровно одну сессию блога под фиксированным ключом
var sessionKey = []byte("session")

var errNoAuthBucket = errors.New("auth bucket not found")

func authBucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b := tx.Bucket(bucketAuth)
	if b == nil {
		return nil, errNoAuthBucket
	}
	return b, nil
}

// viewSession и updateSession открывают транзакцию над auth bucket,
// предварительно проверяя отмену контекста
func (s *Storage) viewSession(ctx context.Context, fn func(b *bbolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		b, err := authBucket(tx)
		if err != nil {
			return err
		}
		return fn(b)
	})
}

func (s *Storage) updateSession(ctx context.Context, fn func(b *bbolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := authBucket(tx)
		if err != nil {
			return err
		}
		return fn(b)
	})
}

// SaveAuth заменяет текущую сессию
func (s *Storage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	raw, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	return s.updateSession(ctx, func(b *bbolt.Bucket) error {
		if err := b.Put(sessionKey, raw); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
}

// GetAuth возвращает текущую сессию или storage.ErrAuthNotFound
func (s *Storage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	var auth storage.AuthData

	err := s.viewSession(ctx, func(b *bbolt.Bucket) error {
		// Значение валидно только внутри транзакции, Unmarshal копирует его
		raw := b.Get(sessionKey)
		if raw == nil {
			return storage.ErrAuthNotFound
		}
		if err := json.Unmarshal(raw, &auth); err != nil {
			return fmt.Errorf("failed to decode session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &auth, nil
}

// DeleteAuth забывает сессию при logout
func (s *Storage) DeleteAuth(ctx context.Context) error {
	return s.updateSession(ctx, func(b *bbolt.Bucket) error {
		if b.Get(sessionKey) == nil {
			return storage.ErrAuthNotFound
		}
		return b.Delete(sessionKey)
	})
}

// IsAuthenticated сообщает, есть ли сессия, которую можно продлить.
// Истекший access token не важен: он обновляется по refresh token.
func (s *Storage) IsAuthenticated(ctx context.Context) (bool, error) {
	auth, err := s.GetAuth(ctx)
	switch {
	case errors.Is(err, storage.ErrAuthNotFound):
		return false, nil
	case err != nil:
		return false, err
	}

	return auth.RefreshToken != "", nil
}
