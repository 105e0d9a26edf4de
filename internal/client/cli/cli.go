// Package cli реализует команды клиента блога.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/iudanet/gophblog/internal/client/iocli"
	"github.com/iudanet/gophblog/internal/client/storage"
	"github.com/iudanet/gophblog/pkg/api"
)

// AuthService управляет локальной сессией
type AuthService interface {
	Register(ctx context.Context, email, password string) (int64, error)
	Login(ctx context.Context, email, password string) (*storage.AuthData, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*storage.AuthData, error)
	WithAccessToken(ctx context.Context, fn func(accessToken string) error) error
}

// BlogAPI - запросы к REST API статей
type BlogAPI interface {
	Me(ctx context.Context, accessToken string) (*api.UserResponse, error)
	ListArticles(ctx context.Context) ([]api.ArticleListItem, error)
	GetArticle(ctx context.Context, id int64) (*api.ArticleResponse, error)
	CreateArticle(ctx context.Context, accessToken string, req api.ArticleRequest) (*api.ArticleResponse, error)
	UpdateArticle(ctx context.Context, accessToken string, id int64, req api.ArticleRequest) (*api.ArticleResponse, error)
	DeleteArticle(ctx context.Context, accessToken string, id int64) error
}

type Cli struct {
	io          iocli.IO
	authService AuthService
	blog        BlogAPI
}

func New(io iocli.IO, authService AuthService, blog BlogAPI) *Cli {
	return &Cli{
		io:          io,
		authService: authService,
		blog:        blog,
	}
}

// Run выполняет команду с аргументами
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "list":
		return c.runList(ctx)
	case "get":
		return c.runGet(ctx, args)
	case "add":
		return c.runAdd(ctx, args)
	case "edit":
		return c.runEdit(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `GophBlog Client

Usage:
  gophblog [OPTIONS] COMMAND [ARGS]

Options:
  --version      Show version information
  --server URL   Server URL (default: http://localhost:8080)
  --db PATH      Path to local session database (default: gophblog-client.db)
  --log-level L  Log level: debug, info, warn, error (default: warn)

Commands:
  register                          Register new user
  login                             Login and save the session
  logout                            Revoke the refresh token and delete the session
  status                            Show authentication status
  list                              List articles
  get <id>                          Show an article
  add [-title T] [-content C]       Create an article
  edit <id> [-title T] [-content C] Update your article
  delete <id>                       Delete your article

Examples:
  gophblog register
  gophblog login
  gophblog add -title "Hello" -content-file post.md
  gophblog edit 3 -title "Hello again"
  gophblog --server https://blog.example.com list
`)
}
