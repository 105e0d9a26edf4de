package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophblog/internal/client/api"
	"github.com/iudanet/gophblog/internal/client/storage"
	pkgapi "github.com/iudanet/gophblog/pkg/api"
)

// mockAuthStorage implements storage.AuthStorage for testing
type mockAuthStorage struct {
	data      *storage.AuthData
	saveErr   error
	getErr    error
	deleteErr error
	saves     int
}

func (m *mockAuthStorage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	// Сохраняем копию данных
	cp := *auth
	m.data = &cp
	return nil
}

func (m *mockAuthStorage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.data == nil {
		return nil, storage.ErrAuthNotFound
	}
	cp := *m.data
	return &cp, nil
}

func (m *mockAuthStorage) DeleteAuth(ctx context.Context) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if m.data == nil {
		return storage.ErrAuthNotFound
	}
	m.data = nil
	return nil
}

func (m *mockAuthStorage) IsAuthenticated(ctx context.Context) (bool, error) {
	return m.data != nil && m.data.RefreshToken != "", nil
}

// mockAPIClient implements APIClient for testing
type mockAPIClient struct {
	registerErr error
	loginErr    error
	renewErr    error
	logoutErr   error
	renewed     string
	logoutToken string
	renewCalls  int
}

func (m *mockAPIClient) Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return &pkgapi.RegisterResponse{UserID: 42}, nil
}

func (m *mockAPIClient) Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.LoginResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &pkgapi.LoginResponse{AccessToken: "access-1", RefreshToken: "refresh-1", ExpiresIn: 1800}, nil
}

func (m *mockAPIClient) RenewAccessToken(ctx context.Context, refreshToken string) (string, error) {
	m.renewCalls++
	if m.renewErr != nil {
		return "", m.renewErr
	}
	return m.renewed, nil
}

func (m *mockAPIClient) Logout(ctx context.Context, accessToken string) error {
	m.logoutToken = accessToken
	return m.logoutErr
}

var unauthorized = &api.StatusError{StatusCode: 401, Message: "invalid token"}

func newTestService(apiClient *mockAPIClient, store *mockAuthStorage, now time.Time) *Service {
	s := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), apiClient, store)
	s.now = func() time.Time { return now }
	return s
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		apiErr   error
		name     string
		email    string
		password string
		wantErr  string
		wantID   int64
	}{
		{name: "success", email: "alice@example.com", password: "secret", wantID: 42},
		{name: "invalid email", email: "alice", password: "secret", wantErr: "invalid email"},
		{name: "empty password", email: "alice@example.com", password: "", wantErr: "invalid password"},
		{name: "server conflict", email: "alice@example.com", password: "secret",
			apiErr: &api.StatusError{StatusCode: 409, Message: "user already exists"}, wantErr: "registration failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockAPIClient{registerErr: tt.apiErr}, &mockAuthStorage{}, time.Now())

			id, err := svc.Register(context.Background(), tt.email, tt.password)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestService_Login(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := &mockAuthStorage{}
	svc := newTestService(&mockAPIClient{}, store, now)

	authData, err := svc.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", authData.Email)
	assert.Equal(t, "access-1", authData.AccessToken)
	assert.Equal(t, "refresh-1", authData.RefreshToken)
	assert.Equal(t, now.Unix()+1800, authData.ExpiresAt)
	assert.Equal(t, authData, store.data)
}

func TestService_Login_Error(t *testing.T) {
	store := &mockAuthStorage{}
	svc := newTestService(&mockAPIClient{loginErr: unauthorized}, store, time.Now())

	_, err := svc.Login(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Nil(t, store.data)
}

func TestService_WithAccessToken(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	session := func(expiresAt int64) *storage.AuthData {
		return &storage.AuthData{
			Email: "alice@example.com", AccessToken: "access-1", RefreshToken: "refresh-1",
			ExpiresIn: 1800, ExpiresAt: expiresAt,
		}
	}

	t.Run("valid token used as is", func(t *testing.T) {
		apiClient := &mockAPIClient{}
		svc := newTestService(apiClient, &mockAuthStorage{data: session(now.Unix() + 60)}, now)

		var used []string
		err := svc.WithAccessToken(context.Background(), func(token string) error {
			used = append(used, token)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"access-1"}, used)
		assert.Zero(t, apiClient.renewCalls)
	})

	t.Run("expired token renewed first", func(t *testing.T) {
		apiClient := &mockAPIClient{renewed: "access-2"}
		store := &mockAuthStorage{data: session(now.Unix() - 1)}
		svc := newTestService(apiClient, store, now)

		var used []string
		err := svc.WithAccessToken(context.Background(), func(token string) error {
			used = append(used, token)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"access-2"}, used)
		assert.Equal(t, "access-2", store.data.AccessToken)
		assert.Equal(t, now.Unix()+1800, store.data.ExpiresAt)
	})

	t.Run("401 triggers one renewal and retry", func(t *testing.T) {
		apiClient := &mockAPIClient{renewed: "access-2"}
		svc := newTestService(apiClient, &mockAuthStorage{data: session(now.Unix() + 60)}, now)

		var used []string
		err := svc.WithAccessToken(context.Background(), func(token string) error {
			used = append(used, token)
			if token == "access-1" {
				return unauthorized
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"access-1", "access-2"}, used)
		assert.Equal(t, 1, apiClient.renewCalls)
	})

	t.Run("second 401 is returned", func(t *testing.T) {
		apiClient := &mockAPIClient{renewed: "access-2"}
		svc := newTestService(apiClient, &mockAuthStorage{data: session(now.Unix() + 60)}, now)

		calls := 0
		err := svc.WithAccessToken(context.Background(), func(token string) error {
			calls++
			return unauthorized
		})
		assert.ErrorIs(t, err, api.ErrUnauthorized)
		assert.Equal(t, 2, calls)
	})

	t.Run("rejected refresh token", func(t *testing.T) {
		apiClient := &mockAPIClient{renewErr: unauthorized}
		svc := newTestService(apiClient, &mockAuthStorage{data: session(now.Unix() - 1)}, now)

		err := svc.WithAccessToken(context.Background(), func(token string) error {
			t.Fatal("fn must not be called")
			return nil
		})
		assert.ErrorContains(t, err, "session expired")
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		apiClient := &mockAPIClient{}
		svc := newTestService(apiClient, &mockAuthStorage{data: session(now.Unix() + 60)}, now)

		forbidden := &api.StatusError{StatusCode: 403}
		err := svc.WithAccessToken(context.Background(), func(token string) error {
			return forbidden
		})
		assert.ErrorIs(t, err, forbidden)
		assert.Zero(t, apiClient.renewCalls)
	})

	t.Run("no session", func(t *testing.T) {
		svc := newTestService(&mockAPIClient{}, &mockAuthStorage{}, now)
		err := svc.WithAccessToken(context.Background(), func(string) error { return nil })
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})
}

func TestService_Logout(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	session := &storage.AuthData{
		Email: "alice@example.com", AccessToken: "access-1", RefreshToken: "refresh-1",
		ExpiresIn: 1800, ExpiresAt: now.Unix() + 60,
	}

	t.Run("success", func(t *testing.T) {
		apiClient := &mockAPIClient{}
		store := &mockAuthStorage{data: session}
		svc := newTestService(apiClient, store, now)

		require.NoError(t, svc.Logout(context.Background()))
		assert.Equal(t, "access-1", apiClient.logoutToken)
		assert.Nil(t, store.data)
	})

	t.Run("server unavailable still clears session", func(t *testing.T) {
		apiClient := &mockAPIClient{logoutErr: errors.New("connection refused")}
		store := &mockAuthStorage{data: session}
		svc := newTestService(apiClient, store, now)

		require.NoError(t, svc.Logout(context.Background()))
		assert.Nil(t, store.data)
	})

	t.Run("not logged in", func(t *testing.T) {
		svc := newTestService(&mockAPIClient{}, &mockAuthStorage{}, now)
		assert.ErrorIs(t, svc.Logout(context.Background()), ErrNotAuthenticated)
	})

	t.Run("local delete failure", func(t *testing.T) {
		store := &mockAuthStorage{data: session, deleteErr: errors.New("disk full")}
		svc := newTestService(&mockAPIClient{}, store, now)
		assert.ErrorContains(t, svc.Logout(context.Background()), "failed to delete local auth data")
	})
}
