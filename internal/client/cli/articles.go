package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/iudanet/gophblog/internal/validation"
	"github.com/iudanet/gophblog/pkg/api"
)

func (c *Cli) runList(ctx context.Context) error {
	articles, err := c.blog.ListArticles(ctx)
	if err != nil {
		return err
	}

	c.io.Println("=== Articles ===")
	c.io.Println()

	if len(articles) == 0 {
		c.io.Println("No articles found.")
		return nil
	}

	for _, a := range articles {
		c.io.Printf("%-6d %s\n", a.ID, a.Title)
	}

	c.io.Println()
	c.io.Printf("Total: %d article(s)\n", len(articles))

	return nil
}

func (c *Cli) runGet(ctx context.Context, args []string) error {
	id, err := parseID(args, "get")
	if err != nil {
		return err
	}

	article, err := c.blog.GetArticle(ctx, id)
	if err != nil {
		return err
	}

	return renderArticle(c.io, article)
}

func (c *Cli) runAdd(ctx context.Context, args []string) error {
	req, err := c.readArticle("add", args, nil)
	if err != nil {
		return err
	}

	var created *api.ArticleResponse
	err = c.authService.WithAccessToken(ctx, func(accessToken string) error {
		created, err = c.blog.CreateArticle(ctx, accessToken, req)
		return err
	})
	if err != nil {
		return err
	}

	c.io.Printf("✓ Article created (ID: %d)\n", created.ID)
	return nil
}

func (c *Cli) runEdit(ctx context.Context, args []string) error {
	id, err := parseID(args, "edit")
	if err != nil {
		return err
	}

	current, err := c.blog.GetArticle(ctx, id)
	if err != nil {
		return err
	}

	req, err := c.readArticle("edit", args[1:], current)
	if err != nil {
		return err
	}

	var updated *api.ArticleResponse
	err = c.authService.WithAccessToken(ctx, func(accessToken string) error {
		updated, err = c.blog.UpdateArticle(ctx, accessToken, id, req)
		return err
	})
	if err != nil {
		return err
	}

	c.io.Printf("✓ Article %d updated\n", updated.ID)
	return nil
}

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	id, err := parseID(args, "delete")
	if err != nil {
		return err
	}

	err = c.authService.WithAccessToken(ctx, func(accessToken string) error {
		return c.blog.DeleteArticle(ctx, accessToken, id)
	})
	if err != nil {
		return err
	}

	c.io.Printf("✓ Article %d deleted\n", id)
	return nil
}

// readArticle собирает заголовок и текст из флагов, недостающие поля запрашивает.
// При редактировании пустой ввод оставляет текущее значение.
func (c *Cli) readArticle(command string, args []string, current *api.ArticleResponse) (api.ArticleRequest, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	title := fs.String("title", "", "article title")
	content := fs.String("content", "", "article content")
	contentFile := fs.String("content-file", "", "read article content from file")

	if err := fs.Parse(args); err != nil {
		return api.ArticleRequest{}, fmt.Errorf("invalid arguments: %w", err)
	}

	req := api.ArticleRequest{Title: *title, Content: *content}

	if *contentFile != "" {
		data, err := os.ReadFile(*contentFile)
		if err != nil {
			return api.ArticleRequest{}, fmt.Errorf("failed to read content file: %w", err)
		}
		req.Content = strings.TrimSpace(string(data))
	}

	if req.Title == "" {
		prompt, fallback := "Title: ", ""
		if current != nil {
			prompt, fallback = fmt.Sprintf("Title [%s]: ", current.Title), current.Title
		}
		input, err := c.io.ReadInput(prompt)
		if err != nil {
			return api.ArticleRequest{}, fmt.Errorf("failed to read title: %w", err)
		}
		req.Title = orDefault(input, fallback)
	}

	if req.Content == "" {
		prompt, fallback := "Content: ", ""
		if current != nil {
			prompt, fallback = "Content [keep current]: ", current.Content
		}
		input, err := c.io.ReadInput(prompt)
		if err != nil {
			return api.ArticleRequest{}, fmt.Errorf("failed to read content: %w", err)
		}
		req.Content = orDefault(input, fallback)
	}

	if err := validation.ValidateArticle(req.Title, req.Content); err != nil {
		return api.ArticleRequest{}, err
	}

	return req, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func parseID(args []string, command string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing article ID. Usage: gophblog %s <id>", command)
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid article ID: %q", args[0])
	}

	return id, nil
}
