package api

import "time"

// ArticleRequest тело запроса на создание и изменение статьи
type ArticleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ArticleResponse полное представление статьи
type ArticleResponse struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	ID        int64     `json:"id"`
}

// ArticleListItem краткое представление статьи в списке
type ArticleListItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	ID      int64  `json:"id"`
}
