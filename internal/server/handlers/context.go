package handlers

import (
	"context"

	"github.com/iudanet/gophblog/internal/server/service"
)

// contextKey тип для ключей контекста
type contextKey string

// IdentityKey ключ для хранения аутентифицированного пользователя в контексте
const IdentityKey contextKey = "identity"

// WithIdentity кладет identity в контекст запроса
func WithIdentity(ctx context.Context, identity service.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// GetIdentity извлекает identity из контекста запроса
func GetIdentity(ctx context.Context) (service.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(service.Identity)
	return identity, ok
}
