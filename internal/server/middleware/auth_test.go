package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/handlers"
	"github.com/iudanet/gophblog/internal/server/service"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTokens accepts tokens of the form "valid-<id>"
type fakeTokens struct {
	subjects map[string]int64
}

func (f *fakeTokens) ValidateAndExtractSubject(token string) (int64, error) {
	id, ok := f.subjects[token]
	if !ok {
		return 0, service.ErrUnauthorized
	}
	return id, nil
}

type fakeUsers struct {
	users map[int64]*models.User
	err   error
}

func (f *fakeUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return user, nil
}

func TestAuthMiddleware(t *testing.T) {
	tokens := &fakeTokens{subjects: map[string]int64{
		"good-token":    1,
		"deleted-token": 2,
	}}
	users := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, Email: "a@b.com"},
	}}

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectIdentity bool
	}{
		{
			name:           "valid token",
			header:         "Bearer good-token",
			expectedStatus: http.StatusOK,
			expectIdentity: true,
		},
		{
			name:           "lowercase scheme",
			header:         "bearer good-token",
			expectedStatus: http.StatusOK,
			expectIdentity: true,
		},
		{
			name:           "missing header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "basic scheme",
			header:         "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bearer without token",
			header:         "Bearer ",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid token",
			header:         "Bearer forged",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "token of deleted user",
			header:         "Bearer deleted-token",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				identity, ok := handlers.GetIdentity(r.Context())
				require.True(t, ok, "identity should be in context")
				assert.Equal(t, int64(1), identity.UserID)
				assert.Equal(t, "a@b.com", identity.Email)
				w.WriteHeader(http.StatusOK)
			})

			handler := AuthMiddleware(setupTestLogger(), tokens, users)(next)

			req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectIdentity, called)
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"error":"Unauthorized"`)
			}
		})
	}
}

func TestAuthMiddleware_UserLookupFailure(t *testing.T) {
	tokens := &fakeTokens{subjects: map[string]int64{"good-token": 1}}
	users := &fakeUsers{err: errors.New("db down")}

	handler := AuthMiddleware(setupTestLogger(), tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}
