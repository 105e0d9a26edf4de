package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/gophblog/pkg/api"
)

// ErrUnauthorized возвращается, когда сервер ответил 401
var ErrUnauthorized = errors.New("unauthorized")

// StatusError описывает неуспешный ответ сервера
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Unwrap позволяет проверять 401 через errors.Is(err, ErrUnauthorized)
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Authorization на другой хост не переносится: это решает net/http
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
	}
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/users", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// RenewAccessToken получает новый access token по refresh token
func (c *Client) RenewAccessToken(ctx context.Context, refreshToken string) (string, error) {
	var resp api.AccessTokenResponse
	req := api.AccessTokenRequest{RefreshToken: refreshToken}
	if err := c.doRequest(ctx, http.MethodPost, "/api/token", "", req, &resp); err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	return resp.AccessToken, nil
}

// Logout удаляет refresh token пользователя на сервере
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/refresh-token", accessToken, nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Me возвращает профиль текущего пользователя
func (c *Client) Me(ctx context.Context, accessToken string) (*api.UserResponse, error) {
	var resp api.UserResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/users/me", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	return &resp, nil
}

// ListArticles возвращает все статьи
func (c *Client) ListArticles(ctx context.Context) ([]api.ArticleListItem, error) {
	var resp []api.ArticleListItem
	if err := c.doRequest(ctx, http.MethodGet, "/api/articles", "", nil, &resp); err != nil {
		return nil, fmt.Errorf("list articles request failed: %w", err)
	}
	return resp, nil
}

// GetArticle возвращает статью по id
func (c *Client) GetArticle(ctx context.Context, id int64) (*api.ArticleResponse, error) {
	var resp api.ArticleResponse
	if err := c.doRequest(ctx, http.MethodGet, articlePath(id), "", nil, &resp); err != nil {
		return nil, fmt.Errorf("get article request failed: %w", err)
	}
	return &resp, nil
}

// CreateArticle создает статью от имени владельца access token
func (c *Client) CreateArticle(ctx context.Context, accessToken string, req api.ArticleRequest) (*api.ArticleResponse, error) {
	var resp api.ArticleResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/articles", accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("create article request failed: %w", err)
	}
	return &resp, nil
}

// UpdateArticle обновляет заголовок и текст статьи
func (c *Client) UpdateArticle(ctx context.Context, accessToken string, id int64, req api.ArticleRequest) (*api.ArticleResponse, error) {
	var resp api.ArticleResponse
	if err := c.doRequest(ctx, http.MethodPut, articlePath(id), accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("update article request failed: %w", err)
	}
	return &resp, nil
}

// DeleteArticle удаляет статью
func (c *Client) DeleteArticle(ctx context.Context, accessToken string, id int64) error {
	if err := c.doRequest(ctx, http.MethodDelete, articlePath(id), accessToken, nil, nil); err != nil {
		return fmt.Errorf("delete article request failed: %w", err)
	}
	return nil
}

func articlePath(id int64) string {
	return "/api/articles/" + strconv.FormatInt(id, 10)
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			statusErr.Message = errResp.Message
			if statusErr.Message == "" {
				statusErr.Message = errResp.Error
			}
		}
		return statusErr
	}

	// DELETE отвечает пустым телом
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
