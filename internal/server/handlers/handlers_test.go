package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/service"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubArticleService returns preconfigured results and records the caller identity
type stubArticleService struct {
	article *models.Article
	err     error
	caller  service.Identity
}

func (s *stubArticleService) Save(ctx context.Context, in service.ArticleInput, author service.Identity) (*models.Article, error) {
	s.caller = author
	return s.article, s.err
}

func (s *stubArticleService) FindAll(ctx context.Context) ([]*models.Article, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*models.Article{s.article}, nil
}

func (s *stubArticleService) FindByID(ctx context.Context, id int64) (*models.Article, error) {
	return s.article, s.err
}

func (s *stubArticleService) Update(ctx context.Context, id int64, in service.ArticleInput, caller service.Identity) (*models.Article, error) {
	s.caller = caller
	return s.article, s.err
}

func (s *stubArticleService) DeleteByID(ctx context.Context, id int64, caller service.Identity) error {
	s.caller = caller
	return s.err
}

// withRoute оборачивает handler в chi router, чтобы заполнить {id}
func withRoute(method, pattern string, h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Method(method, pattern, h)
	return r
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("%w: x", service.ErrInvalidInput), want: http.StatusBadRequest},
		{err: fmt.Errorf("%w: x", service.ErrUnauthorized), want: http.StatusUnauthorized},
		{err: fmt.Errorf("%w: x", service.ErrForbidden), want: http.StatusForbidden},
		{err: fmt.Errorf("%w: x", service.ErrNotFound), want: http.StatusNotFound},
		{err: fmt.Errorf("%w: x", service.ErrConflict), want: http.StatusConflict},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	jwtErr := errors.New("token signature is invalid: signature is invalid")

	tests := []struct {
		err  error
		name string
		want string
	}{
		{name: "validation text kept", err: fmt.Errorf("%w: title is required", service.ErrInvalidInput), want: "invalid input: title is required"},
		{name: "jwt details hidden", err: fmt.Errorf("%w: %w", service.ErrUnauthorized, jwtErr), want: "invalid or expired token"},
		{name: "forbidden", err: fmt.Errorf("%w: article 1 belongs to another user", service.ErrForbidden), want: "forbidden"},
		{name: "not found", err: fmt.Errorf("%w: article 7", service.ErrNotFound), want: "not found"},
		{name: "conflict", err: fmt.Errorf("%w: a@b.com", service.ErrConflict), want: "email already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicMessage(tt.err, statusFor(tt.err)))
		})
	}
}

func TestArticleHandler_Create_PassesIdentity(t *testing.T) {
	now := time.Now()
	svc := &stubArticleService{article: &models.Article{ID: 1, Title: "T", Content: "C", Author: "a@b.com", CreatedAt: now, UpdatedAt: now}}
	h := NewArticleHandler(setupTestLogger(), svc)

	identity := service.Identity{UserID: 1, Email: "a@b.com"}
	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(`{"title":"T","content":"C"}`))
	req = req.WithContext(WithIdentity(req.Context(), identity))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, identity, svc.caller)
	assert.Contains(t, rec.Body.String(), `"author":"a@b.com"`)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestArticleHandler_Create_RequiresIdentity(t *testing.T) {
	h := NewArticleHandler(setupTestLogger(), &stubArticleService{})

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestArticleHandler_Create_InvalidJSON(t *testing.T) {
	h := NewArticleHandler(setupTestLogger(), &stubArticleService{})

	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(`{not json`))
	req = req.WithContext(WithIdentity(req.Context(), service.Identity{UserID: 1, Email: "a@b.com"}))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestArticleHandler_StorageOutageHidesDetails(t *testing.T) {
	svc := &stubArticleService{err: errors.New("pq: connection refused to 10.0.0.5")}
	h := NewArticleHandler(setupTestLogger(), svc)

	tests := []struct {
		handler http.Handler
		name    string
		path    string
	}{
		{name: "list", handler: withRoute(http.MethodGet, "/api/articles", h.List), path: "/api/articles"},
		{name: "get", handler: withRoute(http.MethodGet, "/api/articles/{id}", h.Get), path: "/api/articles/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.NotContains(t, rec.Body.String(), "10.0.0.5")
			assert.JSONEq(t, `{"error":"Internal Server Error","message":"internal server error"}`, rec.Body.String())
		})
	}
}

func TestArticleHandler_Delete(t *testing.T) {
	tests := []struct {
		err        error
		name       string
		path       string
		wantStatus int
	}{
		{name: "deleted", path: "/api/articles/1", wantStatus: http.StatusOK},
		{name: "forbidden", path: "/api/articles/1", err: service.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "not found", path: "/api/articles/1", err: service.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "malformed id", path: "/api/articles/-3", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubArticleService{err: tt.err}
			h := NewArticleHandler(setupTestLogger(), svc)
			handler := withRoute(http.MethodDelete, "/api/articles/{id}", h.Delete)

			req := httptest.NewRequest(http.MethodDelete, tt.path, nil)
			req = req.WithContext(WithIdentity(req.Context(), service.Identity{UserID: 7, Email: "x@y.com"}))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		pingErr    error
		name       string
		wantBody   string
		wantStatus int
	}{
		{name: "storage reachable", wantStatus: http.StatusOK, wantBody: `{"status":"ok"}`},
		{name: "storage down", pingErr: errors.New("down"), wantStatus: http.StatusServiceUnavailable, wantBody: `{"status":"unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(setupTestLogger(), stubPinger{err: tt.pingErr})

			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
