package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/service"
	"github.com/iudanet/gophblog/pkg/api"
)

// ArticleService определяет операции над статьями, нужные handlers
type ArticleService interface {
	Save(ctx context.Context, in service.ArticleInput, author service.Identity) (*models.Article, error)
	FindAll(ctx context.Context) ([]*models.Article, error)
	FindByID(ctx context.Context, id int64) (*models.Article, error)
	Update(ctx context.Context, id int64, in service.ArticleInput, caller service.Identity) (*models.Article, error)
	DeleteByID(ctx context.Context, id int64, caller service.Identity) error
}

// ArticleHandler обрабатывает REST запросы к статьям
type ArticleHandler struct {
	logger   *slog.Logger
	articles ArticleService
}

// NewArticleHandler создает новый handler для статей
func NewArticleHandler(logger *slog.Logger, articles ArticleService) *ArticleHandler {
	return &ArticleHandler{
		logger:   logger,
		articles: articles,
	}
}

// Create обрабатывает POST /api/articles
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		sendError(w, r, "authentication required", http.StatusUnauthorized)
		return
	}

	var req api.ArticleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode article request", slog.Any("error", err))
		sendError(w, r, "invalid request body", http.StatusBadRequest)
		return
	}

	article, err := h.articles.Save(r.Context(), toInput(req), identity)
	if err != nil {
		sendServiceError(w, r, h.logger, err)
		return
	}

	sendJSON(w, r, toArticleResponse(article), http.StatusCreated)
}

// List обрабатывает GET /api/articles
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.FindAll(r.Context())
	if err != nil {
		sendServiceError(w, r, h.logger, err)
		return
	}

	items := make([]api.ArticleListItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, api.ArticleListItem{
			ID:      a.ID,
			Title:   a.Title,
			Content: a.Content,
		})
	}

	sendJSON(w, r, items, http.StatusOK)
}

// Get обрабатывает GET /api/articles/{id}
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		sendError(w, r, "invalid article id", http.StatusBadRequest)
		return
	}

	article, err := h.articles.FindByID(r.Context(), id)
	if err != nil {
		sendServiceError(w, r, h.logger, err)
		return
	}

	sendJSON(w, r, toArticleResponse(article), http.StatusOK)
}

// Update обрабатывает PUT /api/articles/{id}
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		sendError(w, r, "authentication required", http.StatusUnauthorized)
		return
	}

	id, ok := articleID(r)
	if !ok {
		sendError(w, r, "invalid article id", http.StatusBadRequest)
		return
	}

	var req api.ArticleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode article request", slog.Any("error", err))
		sendError(w, r, "invalid request body", http.StatusBadRequest)
		return
	}

	article, err := h.articles.Update(r.Context(), id, toInput(req), identity)
	if err != nil {
		sendServiceError(w, r, h.logger, err)
		return
	}

	sendJSON(w, r, toArticleResponse(article), http.StatusOK)
}

// Delete обрабатывает DELETE /api/articles/{id}
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		sendError(w, r, "authentication required", http.StatusUnauthorized)
		return
	}

	id, ok := articleID(r)
	if !ok {
		sendError(w, r, "invalid article id", http.StatusBadRequest)
		return
	}

	if err := h.articles.DeleteByID(r.Context(), id, identity); err != nil {
		sendServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func toInput(req api.ArticleRequest) service.ArticleInput {
	return service.ArticleInput{Title: req.Title, Content: req.Content}
}

func toArticleResponse(a *models.Article) api.ArticleResponse {
	return api.ArticleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		Author:    a.Author,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
