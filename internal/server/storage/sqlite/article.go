package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/storage"
)

const articleColumns = `id, title, content, author, created_at, updated_at`

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	article := &models.Article{}
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.Author,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return article, nil
}

// CreateArticle inserts a new article
func (s *Storage) CreateArticle(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (title, content, author, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		article.Title,
		article.Content,
		article.Author,
		article.CreatedAt.UTC(),
		article.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get article id: %w", err)
	}
	article.ID = id

	return nil
}

// GetArticle retrieves article by ID
func (s *Storage) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = ?`

	article, err := scanArticle(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

// ListArticles retrieves all articles ordered by ID
func (s *Storage) ListArticles(ctx context.Context) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	articles := make([]*models.Article, 0)

	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return articles, nil
}

// UpdateArticle applies mutate to the stored article inside one transaction
func (s *Storage) UpdateArticle(ctx context.Context, id int64, mutate storage.ArticleCheck) (*models.Article, error) {
	var updated *models.Article

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		article, err := getArticleTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := mutate(article); err != nil {
			return err
		}

		query := `
			UPDATE articles
			SET title = ?, content = ?, updated_at = ?
			WHERE id = ?
		`
		if _, err := tx.ExecContext(ctx, query,
			article.Title,
			article.Content,
			article.UpdatedAt.UTC(),
			article.ID,
		); err != nil {
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

// DeleteArticle runs check against the stored article and deletes it inside one transaction
func (s *Storage) DeleteArticle(ctx context.Context, id int64, check storage.ArticleCheck) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		article, err := getArticleTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := check(article); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete article: %w", err)
		}

		return nil
	})
}

func getArticleTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = ?`

	article, err := scanArticle(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

// withTx выполняет fn в транзакции: commit при успехе, rollback при ошибке
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
