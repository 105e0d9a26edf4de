package models

import "time"

// Article представляет статью блога
type Article struct {
	CreatedAt time.Time `json:"createdAt"` // время создания
	UpdatedAt time.Time `json:"updatedAt"` // время последнего изменения
	Title     string    `json:"title"`     // заголовок
	Content   string    `json:"content"`   // текст статьи
	Author    string    `json:"author"`    // email автора, задается при создании и не меняется
	ID        int64     `json:"id"`        // суррогатный ключ
}

// IsAuthor reports whether identity owns the article.
func (a *Article) IsAuthor(identity string) bool {
	return identity != "" && a.Author == identity
}

// Update меняет изменяемые поля статьи
func (a *Article) Update(title, content string, now time.Time) {
	a.Title = title
	a.Content = content
	a.UpdatedAt = now
}
