package cli

import (
	"fmt"
	"io"
	"text/template"

	"github.com/iudanet/gophblog/pkg/api"
)

const articleTemplate = `
=== {{.Title}} ===

ID:      {{.ID}}
Author:  {{.Author}}
Created: {{.CreatedAt.Format "2006-01-02 15:04"}}
{{- if .UpdatedAt.After .CreatedAt }}
Updated: {{.UpdatedAt.Format "2006-01-02 15:04"}}
{{- end}}

---
{{.Content}}
---
`

var articleTmpl = template.Must(template.New("article").Parse(articleTemplate))

func renderArticle(w io.Writer, article *api.ArticleResponse) error {
	if err := articleTmpl.Execute(w, article); err != nil {
		return fmt.Errorf("failed to render article: %w", err)
	}
	return nil
}
