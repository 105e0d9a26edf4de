package models

import "time"

// User представляет зарегистрированного пользователя блога
type User struct {
	CreatedAt    time.Time `json:"createdAt"` // время регистрации
	Email        string    `json:"email"`     // уникальный email, используется как имя автора
	PasswordHash string    `json:"-"`         // bcrypt хеш пароля, наружу не отдается
	ID           int64     `json:"id"`        // суррогатный ключ
}

// RefreshToken представляет refresh token пользователя.
// На одного пользователя хранится не больше одного токена.
type RefreshToken struct {
	ExpiresAt time.Time `json:"expiresAt"` // время истечения
	CreatedAt time.Time `json:"createdAt"` // время выпуска
	Token     string    `json:"token"`     // SHA256 хеш подписанного JWT
	UserID    int64     `json:"userId"`    // владелец токена
}

// IsExpired reports whether the token is past its expiry at the given moment.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
