package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/storage"
)

// userRecord хранит пользователя вместе с хешем пароля, который скрыт в JSON модели
type userRecord struct {
	models.User
	PasswordHash string `json:"passwordHash"`
}

// CreateUser creates a new user and sets user.ID
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		users, err := bucket(tx, bucketUsers)
		if err != nil {
			return err
		}
		byEmail, err := bucket(tx, bucketUsersByEmail)
		if err != nil {
			return err
		}

		// Уникальность email обеспечивает индексный bucket
		if byEmail.Get([]byte(user.Email)) != nil {
			return storage.ErrUserAlreadyExists
		}

		seq, err := users.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate user id: %w", err)
		}

		record := userRecord{User: *user, PasswordHash: user.PasswordHash}
		record.ID = int64(seq)
		record.CreatedAt = user.CreatedAt.UTC()

		if err := put(users, itob(record.ID), record); err != nil {
			return err
		}
		if err := byEmail.Put([]byte(user.Email), itob(record.ID)); err != nil {
			return fmt.Errorf("failed to index user email: %w", err)
		}

		user.ID = record.ID
		return nil
	})
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User

	err := s.db.View(func(tx *bbolt.Tx) error {
		byEmail, err := bucket(tx, bucketUsersByEmail)
		if err != nil {
			return err
		}

		id := byEmail.Get([]byte(email))
		if id == nil {
			return storage.ErrUserNotFound
		}

		user, err = getUser(tx, btoi(id))
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	var user *models.User

	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = getUser(tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func getUser(tx *bbolt.Tx, userID int64) (*models.User, error) {
	users, err := bucket(tx, bucketUsers)
	if err != nil {
		return nil, err
	}

	data := users.Get(itob(userID))
	if data == nil {
		return nil, storage.ErrUserNotFound
	}

	var record userRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	user := record.User
	user.PasswordHash = record.PasswordHash
	return &user, nil
}
