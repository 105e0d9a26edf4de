// Package storagetest holds behaviour checks shared by all storage backends.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/storage"
)

var errNotAuthor = errors.New("not the author")

// ownedBy возвращает проверку автора, как ее делает сервис статей
func ownedBy(email string) storage.ArticleCheck {
	return func(a *models.Article) error {
		if a.Author != email {
			return errNotAuthor
		}
		return nil
	}
}

// ConcurrentArticleWrites проверяет, что проверка автора и изменение статьи
// выполняются атомарно, когда владелец и чужой пользователь пишут одновременно.
func ConcurrentArticleWrites(t *testing.T, s storage.ArticleStorage) {
	t.Helper()

	const (
		owner    = "owner@blog.dev"
		intruder = "intruder@blog.dev"
		writers  = 12
	)

	ctx := context.Background()

	newArticle := func(title string) *models.Article {
		now := time.Now()
		a := &models.Article{Title: title, Content: "draft", Author: owner, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, s.CreateArticle(ctx, a))
		return a
	}

	t.Run("foreign edits never land", func(t *testing.T) {
		article := newArticle("contested")

		var wg sync.WaitGroup
		errs := make(chan error, 2*writers)
		for i := 0; i < writers; i++ {
			wg.Add(2)
			go func(rev int) {
				defer wg.Done()
				_, err := s.UpdateArticle(ctx, article.ID, func(a *models.Article) error {
					if err := ownedBy(owner)(a); err != nil {
						return err
					}
					a.Content = fmt.Sprintf("rev %d", rev)
					a.UpdatedAt = time.Now()
					return nil
				})
				errs <- err
			}(i)
			go func() {
				defer wg.Done()
				_, err := s.UpdateArticle(ctx, article.ID, func(a *models.Article) error {
					// Изменение до проверки не должно сохраниться
					a.Title = "hijacked"
					return ownedBy(intruder)(a)
				})
				if !errors.Is(err, errNotAuthor) {
					errs <- fmt.Errorf("intruder update: got %v", err)
				}
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}

		got, err := s.GetArticle(ctx, article.ID)
		require.NoError(t, err)
		assert.Equal(t, "contested", got.Title)
		assert.Regexp(t, `^rev \d+$`, got.Content)
		assert.Equal(t, owner, got.Author)
	})

	t.Run("no edit after delete", func(t *testing.T) {
		article := newArticle("doomed")

		var (
			deleted   atomic.Bool
			deletes   atomic.Int32
			afterward atomic.Int32
			wg        sync.WaitGroup
		)

		for i := 0; i < writers; i++ {
			wg.Add(3)
			go func(rev int) {
				defer wg.Done()
				_, err := s.UpdateArticle(ctx, article.ID, func(a *models.Article) error {
					if deleted.Load() {
						afterward.Add(1)
					}
					a.Content = fmt.Sprintf("rev %d", rev)
					return ownedBy(owner)(a)
				})
				if err != nil {
					assert.ErrorIs(t, err, storage.ErrArticleNotFound)
				}
			}(i)
			go func() {
				defer wg.Done()
				err := s.DeleteArticle(ctx, article.ID, func(a *models.Article) error {
					if err := ownedBy(owner)(a); err != nil {
						return err
					}
					deleted.Store(true)
					return nil
				})
				if err == nil {
					deletes.Add(1)
					return
				}
				assert.ErrorIs(t, err, storage.ErrArticleNotFound)
			}()
			go func() {
				defer wg.Done()
				err := s.DeleteArticle(ctx, article.ID, ownedBy(intruder))
				if !errors.Is(err, storage.ErrArticleNotFound) {
					assert.ErrorIs(t, err, errNotAuthor)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), deletes.Load(), "exactly one delete succeeds")
		assert.Zero(t, afterward.Load(), "an update saw the article after it was deleted")

		_, err := s.GetArticle(ctx, article.ID)
		assert.ErrorIs(t, err, storage.ErrArticleNotFound)
	})
}
