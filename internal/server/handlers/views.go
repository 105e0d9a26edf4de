package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/gophblog/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// viewData данные для шаблонов страниц
type viewData struct {
	Article  *models.Article
	Title    string
	Message  string
	Articles []*models.Article
}

// ViewHandler отдает HTML страницы поверх того же ArticleService, что и REST API
type ViewHandler struct {
	logger   *slog.Logger
	articles ArticleService
}

// NewViewHandler создает новый handler для HTML страниц
func NewViewHandler(logger *slog.Logger, articles ArticleService) *ViewHandler {
	return &ViewHandler{
		logger:   logger,
		articles: articles,
	}
}

// ListPage обрабатывает GET /articles
func (h *ViewHandler) ListPage(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.FindAll(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, "articleList", viewData{Title: "Articles", Articles: articles}, http.StatusOK)
}

// ArticlePage обрабатывает GET /articles/{id}
func (h *ViewHandler) ArticlePage(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		h.render(w, r, "error", viewData{Title: "Bad Request", Message: "invalid article id"}, http.StatusBadRequest)
		return
	}

	article, err := h.articles.FindByID(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, "article", viewData{Title: article.Title, Article: article}, http.StatusOK)
}

// NewArticlePage обрабатывает GET /new-article[?id=]
// Без id отдает пустой редактор, с id редактор с данными статьи
func (h *ViewHandler) NewArticlePage(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		h.render(w, r, "newArticle", viewData{Title: "New article"}, http.StatusOK)
		return
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.render(w, r, "error", viewData{Title: "Bad Request", Message: "invalid article id"}, http.StatusBadRequest)
		return
	}

	article, err := h.articles.FindByID(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, "newArticle", viewData{Title: "Edit article", Article: article}, http.StatusOK)
}

func (h *ViewHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := "something went wrong"
	if status == http.StatusNotFound {
		message = "article not found"
	} else {
		h.logger.ErrorContext(r.Context(), "view failed", slog.Any("error", err))
	}

	h.render(w, r, "error", viewData{Title: http.StatusText(status), Message: message}, status)
}

// render исполняет шаблон в буфер и отдает страницу целиком
func (h *ViewHandler) render(w http.ResponseWriter, r *http.Request, name string, data viewData, status int) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render template",
			slog.String("template", name),
			slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write page", slog.Any("error", err))
	}
}
