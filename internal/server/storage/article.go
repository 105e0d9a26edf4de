package storage

import (
	"context"

	"github.com/iudanet/gophblog/internal/models"
)

// ArticleCheck inspects an article inside a write transaction.
// Returning an error aborts the transaction and the error is returned unchanged.
type ArticleCheck func(article *models.Article) error

// ArticleStorage defines interface for article persistence
type ArticleStorage interface {
	// CreateArticle inserts a new article and sets article.ID
	CreateArticle(ctx context.Context, article *models.Article) error

	// GetArticle retrieves article by ID
	// Returns ErrArticleNotFound if article doesn't exist
	GetArticle(ctx context.Context, id int64) (*models.Article, error)

	// ListArticles retrieves all articles in insertion order
	// Returns empty slice if no articles found
	ListArticles(ctx context.Context) ([]*models.Article, error)

	// UpdateArticle loads the article, lets mutate change it and stores the result,
	// all within one transaction
	// Returns ErrArticleNotFound if article doesn't exist
	UpdateArticle(ctx context.Context, id int64, mutate ArticleCheck) (*models.Article, error)

	// DeleteArticle loads the article, runs check and deletes it within one transaction
	// Returns ErrArticleNotFound if article doesn't exist
	DeleteArticle(ctx context.Context, id int64, check ArticleCheck) error
}
