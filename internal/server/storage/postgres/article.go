package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/storage"
)

const articleColumns = `id, title, content, author, created_at, updated_at`

func scanArticle(row pgx.Row) (*models.Article, error) {
	article := &models.Article{}
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.Author,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}
	return article, nil
}

// CreateArticle inserts a new article
func (s *Storage) CreateArticle(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (title, content, author, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		article.Title,
		article.Content,
		article.Author,
		article.CreatedAt.UTC(),
		article.UpdatedAt.UTC(),
	).Scan(&article.ID)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	return nil
}

// GetArticle retrieves article by ID
func (s *Storage) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	return scanArticle(s.pool.QueryRow(ctx, query, id))
}

// ListArticles retrieves all articles ordered by ID
func (s *Storage) ListArticles(ctx context.Context) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*models.Article, 0)

	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return articles, nil
}

// UpdateArticle locks the article row, applies mutate and persists the result
func (s *Storage) UpdateArticle(ctx context.Context, id int64, mutate storage.ArticleCheck) (*models.Article, error) {
	var updated *models.Article

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		article, err := lockArticle(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := mutate(article); err != nil {
			return err
		}

		query := `UPDATE articles SET title = $1, content = $2, updated_at = $3 WHERE id = $4`
		if _, err := tx.Exec(ctx, query, article.Title, article.Content, article.UpdatedAt.UTC(), article.ID); err != nil {
			return fmt.Errorf("failed to update article: %w", err)
		}

		updated = article
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteArticle locks the article row, runs check and deletes it
func (s *Storage) DeleteArticle(ctx context.Context, id int64, check storage.ArticleCheck) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		article, err := lockArticle(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := check(article); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete article: %w", err)
		}

		return nil
	})
}

// lockArticle читает статью с блокировкой строки до конца транзакции
func lockArticle(ctx context.Context, tx pgx.Tx, id int64) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1 FOR UPDATE`
	return scanArticle(tx.QueryRow(ctx, query, id))
}
