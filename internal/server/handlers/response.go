package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/iudanet/gophblog/internal/server/service"
	"github.com/iudanet/gophblog/pkg/api"
)

// sendJSON отправляет JSON ответ
func sendJSON(w http.ResponseWriter, r *http.Request, data any, statusCode int) {
	render.Status(r, statusCode)
	render.JSON(w, r, data)
}

// sendError отправляет JSON ответ с ошибкой
func sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	sendJSON(w, r, resp, statusCode)
}

// statusFor сопоставляет ошибку сервиса HTTP статусу
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// sendServiceError отправляет ответ для ошибки сервиса.
// Детали внутренних ошибок в ответ не попадают, только в лог.
func sendServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		sendError(w, r, "internal server error", status)
		return
	}

	logger.DebugContext(r.Context(), "request rejected",
		slog.Int("status", status),
		slog.Any("error", err))
	sendError(w, r, publicMessage(err, status), status)
}

// publicMessage возвращает безопасный текст для клиента.
// Только ошибки валидации отдаются как есть.
func publicMessage(err error, status int) string {
	switch status {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusUnauthorized:
		return "invalid or expired token"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not found"
	case http.StatusConflict:
		return "email already registered"
	default:
		return http.StatusText(status)
	}
}

// articleID разбирает {id} из пути
func articleID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
