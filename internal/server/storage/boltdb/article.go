package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/storage"
)

// CreateArticle inserts a new article and sets article.ID
func (s *Storage) CreateArticle(ctx context.Context, article *models.Article) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		articles, err := bucket(tx, bucketArticles)
		if err != nil {
			return err
		}

		seq, err := articles.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate article id: %w", err)
		}

		record := *article
		record.ID = int64(seq)
		record.CreatedAt = article.CreatedAt.UTC()
		record.UpdatedAt = article.UpdatedAt.UTC()

		if err := put(articles, itob(record.ID), record); err != nil {
			return err
		}

		article.ID = record.ID
		return nil
	})
}

// GetArticle retrieves article by ID
func (s *Storage) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	var article *models.Article

	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		article, err = getArticle(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return article, nil
}

// ListArticles retrieves all articles ordered by ID
func (s *Storage) ListArticles(ctx context.Context) ([]*models.Article, error) {
	articles := make([]*models.Article, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketArticles)
		if err != nil {
			return err
		}

		return b.ForEach(func(_, v []byte) error {
			article := &models.Article{}
			if err := json.Unmarshal(v, article); err != nil {
				return fmt.Errorf("failed to unmarshal article: %w", err)
			}
			articles = append(articles, article)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return articles, nil
}

// UpdateArticle applies mutate to the stored article inside one write transaction
func (s *Storage) UpdateArticle(ctx context.Context, id int64, mutate storage.ArticleCheck) (*models.Article, error) {
	var updated *models.Article

	err := s.db.Update(func(tx *bbolt.Tx) error {
		article, err := getArticle(tx, id)
		if err != nil {
			return err
		}

		author, createdAt := article.Author, article.CreatedAt

		if err := mutate(article); err != nil {
			return err
		}

		articles, err := bucket(tx, bucketArticles)
		if err != nil {
			return err
		}

		// Автор, id и дата создания неизменны
		article.ID = id
		article.Author = author
		article.CreatedAt = createdAt
		article.UpdatedAt = article.UpdatedAt.UTC()
		if err := put(articles, itob(id), article); err != nil {
			return err
		}

		updated = article
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteArticle runs check against the stored article and deletes it inside one write transaction
func (s *Storage) DeleteArticle(ctx context.Context, id int64, check storage.ArticleCheck) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		article, err := getArticle(tx, id)
		if err != nil {
			return err
		}

		if err := check(article); err != nil {
			return err
		}

		articles, err := bucket(tx, bucketArticles)
		if err != nil {
			return err
		}

		if err := articles.Delete(itob(id)); err != nil {
			return fmt.Errorf("failed to delete article: %w", err)
		}

		return nil
	})
}

func getArticle(tx *bbolt.Tx, id int64) (*models.Article, error) {
	articles, err := bucket(tx, bucketArticles)
	if err != nil {
		return nil, err
	}

	data := articles.Get(itob(id))
	if data == nil {
		return nil, storage.ErrArticleNotFound
	}

	article := &models.Article{}
	if err := json.Unmarshal(data, article); err != nil {
		return nil, fmt.Errorf("failed to unmarshal article: %w", err)
	}

	return article, nil
}
