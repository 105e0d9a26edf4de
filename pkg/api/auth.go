package api

import "time"

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email    string `json:"email"`    // email пользователя, уникален
	Password string `json:"password"` // пароль в открытом виде, хранится только bcrypt хеш
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	UserID int64 `json:"userId"` // id созданного пользователя
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse представляет ответ с парой токенов
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`  // JWT access token
	RefreshToken string `json:"refreshToken"` // JWT refresh token
	ExpiresIn    int64  `json:"expiresIn"`    // время жизни access token в секундах
}

// AccessTokenRequest представляет запрос на обновление access token
type AccessTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AccessTokenResponse представляет ответ с новым access token
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// UserResponse описывает текущего пользователя
type UserResponse struct {
	CreatedAt time.Time `json:"createdAt"`
	Email     string    `json:"email"`
	ID        int64     `json:"id"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
