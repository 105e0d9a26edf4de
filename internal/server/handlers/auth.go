package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/service"
	"github.com/iudanet/gophblog/pkg/api"
)

// UserService определяет операции над пользователями, нужные handlers
type UserService interface {
	Register(ctx context.Context, email, password string) (int64, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// TokenService определяет операции над токенами, нужные handlers
type TokenService interface {
	IssueAccessToken(userID int64) (string, error)
	IssueRefreshToken(ctx context.Context, userID int64) (string, error)
	RenewAccessToken(ctx context.Context, refreshToken string) (string, error)
	RevokeRefreshToken(ctx context.Context, userID int64) error
}

// AuthHandler обрабатывает регистрацию и выдачу токенов
type AuthHandler struct {
	logger    *slog.Logger
	users     UserService
	tokens    TokenService
	expiresIn int64
}

// NewAuthHandler создает новый handler для авторизации
// expiresIn время жизни access token в секундах, возвращается клиенту при логине
func NewAuthHandler(logger *slog.Logger, users UserService, tokens TokenService, expiresIn int64) *AuthHandler {
	return &AuthHandler{
		logger:    logger,
		users:     users,
		tokens:    tokens,
		expiresIn: expiresIn,
	}
}

// Register обрабатывает POST /api/users
// Регистрация нового пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(w, r, "invalid request body", http.StatusBadRequest)
		return
	}

	userID, err := h.users.Register(ctx, req.Email, req.Password)
	if err != nil {
		sendServiceError(w, r, h.logger, err)
		return
	}

	sendJSON(w, r, api.RegisterResponse{UserID: userID}, http.StatusCreated)
}

// Login обрабатывает POST /api/login
// Проверяет пароль и выдает пару токенов
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(w, r, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		sendError(w, r, "email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, service.ErrUnauthorized) {
		h.logger.DebugContext(ctx, "login rejected", slog.Any("error", err))
		sendError(w, r, "invalid email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		sendServiceError(w, r, h.logger, err)
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(user.ID)
	if err != nil {
		sendServiceError(w, r, h.logger, err)
		return
	}

	refreshToken, err := h.tokens.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		sendServiceError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "User logged in", slog.Int64("user_id", user.ID))

	sendJSON(w, r, api.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    h.expiresIn,
	}, http.StatusOK)
}

// Token обрабатывает POST /api/token
// Выдает новый access token по действующему refresh token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.AccessTokenRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode token request", slog.Any("error", err))
		sendError(w, r, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.RefreshToken == "" {
		sendError(w, r, "refreshToken is required", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.tokens.RenewAccessToken(ctx, req.RefreshToken)
	if err != nil {
		sendServiceError(w, r, h.logger, err)
		return
	}

	sendJSON(w, r, api.AccessTokenResponse{AccessToken: accessToken}, http.StatusCreated)
}

// Logout обрабатывает DELETE /api/refresh-token
// Отзывает refresh token текущего пользователя
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		sendError(w, r, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.tokens.RevokeRefreshToken(r.Context(), identity.UserID); err != nil {
		sendServiceError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "User logged out", slog.Int64("user_id", identity.UserID))

	w.WriteHeader(http.StatusOK)
}

// Me обрабатывает GET /api/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		sendError(w, r, "authentication required", http.StatusUnauthorized)
		return
	}

	user, err := h.users.FindByID(r.Context(), identity.UserID)
	if err != nil {
		sendServiceError(w, r, h.logger, err)
		return
	}

	sendJSON(w, r, api.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, http.StatusOK)
}
