package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/handlers"
	"github.com/iudanet/gophblog/internal/server/service"
)

// TokenValidator проверяет access token и возвращает id пользователя
type TokenValidator interface {
	ValidateAndExtractSubject(accessToken string) (int64, error)
}

// UserFinder ищет пользователя по id
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware создает middleware для проверки JWT токена.
// В контекст кладется service.Identity пользователя, которому выдан токен.
func AuthMiddleware(logger *slog.Logger, tokens TokenValidator, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.DebugContext(ctx, "Missing Authorization header")
				writeError(w, "missing token", http.StatusUnauthorized)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				logger.WarnContext(ctx, "Invalid Authorization header format")
				writeError(w, "invalid token format", http.StatusUnauthorized)
				return
			}

			userID, err := tokens.ValidateAndExtractSubject(parts[1])
			if err != nil {
				logger.WarnContext(ctx, "Invalid access token", slog.Any("error", err))
				writeError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			// Пользователь мог быть удален после выдачи токена
			user, err := users.FindByID(ctx, userID)
			if err != nil {
				if errors.Is(err, service.ErrNotFound) {
					logger.WarnContext(ctx, "Token subject no longer exists", slog.Int64("user_id", userID))
					writeError(w, "invalid token", http.StatusUnauthorized)
					return
				}
				logger.ErrorContext(ctx, "Failed to load token subject", slog.Any("error", err))
				writeError(w, "internal server error", http.StatusInternalServerError)
				return
			}

			identity := service.Identity{UserID: user.ID, Email: user.Email}

			logger.DebugContext(ctx, "User authenticated", slog.Int64("user_id", user.ID))

			// Передаем запрос дальше с обновленным контекстом
			next.ServeHTTP(w, r.WithContext(handlers.WithIdentity(ctx, identity)))
		})
	}
}
