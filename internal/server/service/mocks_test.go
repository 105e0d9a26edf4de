package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/iudanet/gophblog/internal/models"
	"github.com/iudanet/gophblog/internal/server/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockArticleStorage is an in-memory ArticleStorage; a mutex plays the role of the transaction
type mockArticleStorage struct {
	articles map[int64]*models.Article
	err      error
	mu       sync.Mutex
	nextID   int64
}

func newMockArticleStorage() *mockArticleStorage {
	return &mockArticleStorage{articles: make(map[int64]*models.Article)}
}

func (m *mockArticleStorage) CreateArticle(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	article.ID = m.nextID
	stored := *article
	m.articles[article.ID] = &stored
	return nil
}

func (m *mockArticleStorage) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.articles[id]
	if !ok {
		return nil, storage.ErrArticleNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockArticleStorage) ListArticles(ctx context.Context) ([]*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	result := make([]*models.Article, 0, len(m.articles))
	for id := int64(1); id <= m.nextID; id++ {
		if a, ok := m.articles[id]; ok {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *mockArticleStorage) UpdateArticle(ctx context.Context, id int64, mutate storage.ArticleCheck) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.articles[id]
	if !ok {
		return nil, storage.ErrArticleNotFound
	}
	cp := *a
	if err := mutate(&cp); err != nil {
		return nil, err
	}
	m.articles[id] = &cp
	result := cp
	return &result, nil
}

func (m *mockArticleStorage) DeleteArticle(ctx context.Context, id int64, check storage.ArticleCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	a, ok := m.articles[id]
	if !ok {
		return storage.ErrArticleNotFound
	}
	cp := *a
	if err := check(&cp); err != nil {
		return err
	}
	delete(m.articles, id)
	return nil
}

// mockUserStorage is an in-memory UserStorage
type mockUserStorage struct {
	users  map[string]*models.User // email -> User
	err    error
	nextID int64
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	if _, exists := m.users[user.Email]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

// mockTokenStorage is an in-memory TokenStorage keyed by user
type mockTokenStorage struct {
	tokens    map[int64]*models.RefreshToken
	saveError error
	getError  error
}

func newMockTokenStorage() *mockTokenStorage {
	return &mockTokenStorage{tokens: make(map[int64]*models.RefreshToken)}
}

func (m *mockTokenStorage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.tokens[token.UserID] = token
	return nil
}

func (m *mockTokenStorage) GetRefreshToken(ctx context.Context, userID int64) (*models.RefreshToken, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	token, ok := m.tokens[userID]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	return token, nil
}

func (m *mockTokenStorage) DeleteRefreshToken(ctx context.Context, userID int64) error {
	if _, ok := m.tokens[userID]; !ok {
		return storage.ErrTokenNotFound
	}
	delete(m.tokens, userID)
	return nil
}

func (m *mockTokenStorage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}
