package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/storage"
	"github.com/iudanet/gophblog/internal/validation"
)

// UserService implements registration and user lookup
type UserService struct {
	storage storage.UserStorage
	logger  *slog.Logger
	now     func() time.Time
	cost    int
}

// NewUserService creates a new UserService with bcrypt.DefaultCost
func NewUserService(logger *slog.Logger, users storage.UserStorage) *UserService {
	return &UserService{
		storage: users,
		logger:  logger,
		now:     time.Now,
		cost:    bcrypt.DefaultCost,
	}
}

// Register creates a user with a bcrypt-hashed password and returns its ID
func (s *UserService) Register(ctx context.Context, email, password string) (int64, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return 0, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", slog.Int64("user_id", user.ID))

	return user.ID, nil
}

// Authenticate checks email and password and returns the user
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	return user, nil
}

// FindByID returns the user or ErrNotFound
func (s *UserService) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.storage.GetUserByID(ctx, id)
	if err != nil {
		return nil, translateUserErr(err)
	}
	return user, nil
}

// FindByEmail returns the user or ErrNotFound
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, translateUserErr(err)
	}
	return user, nil
}

func translateUserErr(err error) error {
	if errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return fmt.Errorf("user storage: %w", err)
}
