// Package auth управляет сессией клиента: регистрация, вход, выход
// и обновление access token по refresh token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/gophblog/internal/client/api"
	"github.com/iudanet/gophblog/internal/client/storage"
	"github.com/iudanet/gophblog/internal/validation"
	pkgapi "github.com/iudanet/gophblog/pkg/api"
)

// ErrNotAuthenticated возвращается, когда локальной сессии нет
var ErrNotAuthenticated = errors.New("not authenticated, run 'login' first")

// APIClient - запросы к серверу, нужные для работы с сессией
type APIClient interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.LoginResponse, error)
	RenewAccessToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, accessToken string) error
}

// Service предоставляет функции авторизации
type Service struct {
	apiClient APIClient
	authStore storage.AuthStorage
	logger    *slog.Logger
	now       func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(logger *slog.Logger, apiClient APIClient, authStore storage.AuthStorage) *Service {
	return &Service{
		apiClient: apiClient,
		authStore: authStore,
		logger:    logger,
		now:       time.Now,
	}
}

// Register регистрирует нового пользователя и возвращает его id
func (s *Service) Register(ctx context.Context, email, password string) (int64, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return 0, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return 0, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.apiClient.Register(ctx, pkgapi.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return 0, fmt.Errorf("registration failed: %w", err)
	}

	return resp.UserID, nil
}

// Login выполняет аутентификацию и сохраняет сессию локально
func (s *Service) Login(ctx context.Context, email, password string) (*storage.AuthData, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.apiClient.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	authData := &storage.AuthData{
		Email:        email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		ExpiresAt:    s.now().Unix() + resp.ExpiresIn,
	}

	if err := s.authStore.SaveAuth(ctx, authData); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}

	return authData, nil
}

// Session возвращает сохраненную сессию
func (s *Service) Session(ctx context.Context) (*storage.AuthData, error) {
	authData, err := s.authStore.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}
	return authData, nil
}

// WithAccessToken вызывает fn с действующим access token.
// Истекший токен обновляется заранее, а при ответе 401 токен обновляется
// и fn вызывается повторно один раз.
func (s *Service) WithAccessToken(ctx context.Context, fn func(accessToken string) error) error {
	authData, err := s.Session(ctx)
	if err != nil {
		return err
	}

	if s.now().Unix() >= authData.ExpiresAt {
		if err := s.renew(ctx, authData); err != nil {
			return err
		}
	}

	err = fn(authData.AccessToken)
	if !errors.Is(err, api.ErrUnauthorized) {
		return err
	}

	s.logger.DebugContext(ctx, "access token rejected, renewing")

	if err := s.renew(ctx, authData); err != nil {
		return err
	}

	return fn(authData.AccessToken)
}

// renew обновляет access token и сохраняет его в сессии
func (s *Service) renew(ctx context.Context, authData *storage.AuthData) error {
	accessToken, err := s.apiClient.RenewAccessToken(ctx, authData.RefreshToken)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return fmt.Errorf("session expired, run 'login' again: %w", err)
		}
		return fmt.Errorf("failed to renew access token: %w", err)
	}

	authData.AccessToken = accessToken
	// Сервер не сообщает срок жизни при обновлении, используем срок из логина
	authData.ExpiresAt = s.now().Unix() + authData.ExpiresIn

	if err := s.authStore.SaveAuth(ctx, authData); err != nil {
		return fmt.Errorf("failed to save auth data: %w", err)
	}

	return nil
}

// Logout выполняет выход из системы
// Удаляет локальные данные авторизации и уведомляет сервер
func (s *Service) Logout(ctx context.Context) error {
	err := s.WithAccessToken(ctx, func(accessToken string) error {
		return s.apiClient.Logout(ctx, accessToken)
	})
	if errors.Is(err, ErrNotAuthenticated) {
		return err
	}
	if err != nil {
		// Не прерываем процесс, если сервер недоступен
		s.logger.WarnContext(ctx, "failed to logout on server", slog.Any("error", err))
	}

	// Всегда удаляем локальные данные, даже если сервер недоступен
	if err := s.authStore.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}

	return nil
}
