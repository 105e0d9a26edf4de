package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTitleLen максимальная длина заголовка статьи в символах
const MaxTitleLen = 255

// ValidateArticle проверяет заголовок и текст статьи
func ValidateArticle(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be empty")
	}

	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLen)
	}

	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content cannot be empty")
	}

	return nil
}
