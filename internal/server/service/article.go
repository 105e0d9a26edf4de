package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/storage"
	"github.com/iudanet/gophblog/internal/validation"
)

// ArticleInput carries title and content of a create or update request
type ArticleInput struct {
	Title   string
	Content string
}

// ArticleService implements article use cases
type ArticleService struct {
	storage storage.ArticleStorage
	logger  *slog.Logger
	now     func() time.Time
}

// NewArticleService creates a new ArticleService
func NewArticleService(logger *slog.Logger, articles storage.ArticleStorage) *ArticleService {
	return &ArticleService{
		storage: articles,
		logger:  logger,
		now:     time.Now,
	}
}

// Save creates an article authored by the caller
func (s *ArticleService) Save(ctx context.Context, in ArticleInput, author Identity) (*models.Article, error) {
	if author.Email == "" {
		return nil, fmt.Errorf("%w: no author", ErrUnauthorized)
	}

	if err := validation.ValidateArticle(in.Title, in.Content); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	article := &models.Article{
		Title:     in.Title,
		Content:   in.Content,
		Author:    author.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.CreateArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to save article: %w", err)
	}

	s.logger.InfoContext(ctx, "Article created",
		slog.Int64("article_id", article.ID),
		slog.Int64("user_id", author.UserID),
	)

	return article, nil
}

// FindAll returns every article
func (s *ArticleService) FindAll(ctx context.Context) ([]*models.Article, error) {
	articles, err := s.storage.ListArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// FindByID returns the article or ErrNotFound
func (s *ArticleService) FindByID(ctx context.Context, id int64) (*models.Article, error) {
	article, err := s.storage.GetArticle(ctx, id)
	if err != nil {
		return nil, translateArticleErr(id, err)
	}
	return article, nil
}

// Update changes title and content of an article owned by the caller.
// The author check and the write happen in one storage transaction.
func (s *ArticleService) Update(ctx context.Context, id int64, in ArticleInput, caller Identity) (*models.Article, error) {
	if err := validation.ValidateArticle(in.Title, in.Content); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	article, err := s.storage.UpdateArticle(ctx, id, func(a *models.Article) error {
		if !a.IsAuthor(caller.Email) {
			return fmt.Errorf("%w: article %d belongs to another author", ErrForbidden, id)
		}
		a.Update(in.Title, in.Content, now)
		return nil
	})
	if err != nil {
		return nil, translateArticleErr(id, err)
	}

	s.logger.InfoContext(ctx, "Article updated",
		slog.Int64("article_id", id),
		slog.Int64("user_id", caller.UserID),
	)

	return article, nil
}

// DeleteByID removes an article owned by the caller
func (s *ArticleService) DeleteByID(ctx context.Context, id int64, caller Identity) error {
	err := s.storage.DeleteArticle(ctx, id, func(a *models.Article) error {
		if !a.IsAuthor(caller.Email) {
			return fmt.Errorf("%w: article %d belongs to another author", ErrForbidden, id)
		}
		return nil
	})
	if err != nil {
		return translateArticleErr(id, err)
	}

	s.logger.InfoContext(ctx, "Article deleted",
		slog.Int64("article_id", id),
		slog.Int64("user_id", caller.UserID),
	)

	return nil
}

func translateArticleErr(id int64, err error) error {
	switch {
	case errors.Is(err, storage.ErrArticleNotFound):
		return fmt.Errorf("%w: article %d", ErrNotFound, id)
	case errors.Is(err, ErrForbidden):
		return err
	default:
		return fmt.Errorf("article storage: %w", err)
	}
}
