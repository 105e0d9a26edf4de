package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/iudanet/gophblog/internal/server/handlers"
	"github.com/iudanet/gophblog/internal/server/middleware"
)

// TokenService is used both by auth handlers and by the auth middleware
type TokenService interface {
	handlers.TokenService
	middleware.TokenValidator
}

// Deps holds everything the router wires into handlers
type Deps struct {
	Logger      *slog.Logger
	Articles    handlers.ArticleService
	Users       handlers.UserService
	Tokens      TokenService
	Storage     handlers.Pinger
	RateLimiter *middleware.RateLimiter
	// AllowedOrigins is the CORS origin allow-list
	AllowedOrigins []string
	// AccessTokenTTL is reported to clients as expiresIn on login
	AccessTokenTTL time.Duration
}

// New creates and configures the chi router
func New(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LoggingWithSkip(d.Logger, []string{"/health"}))
	r.Use(middleware.RecoveryMiddleware(d.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	articleHandler := handlers.NewArticleHandler(d.Logger, d.Articles)
	authHandler := handlers.NewAuthHandler(d.Logger, d.Users, d.Tokens, int64(d.AccessTokenTTL.Seconds()))
	viewHandler := handlers.NewViewHandler(d.Logger, d.Articles)
	healthHandler := handlers.NewHealthHandler(d.Logger, d.Storage)

	requireAuth := middleware.AuthMiddleware(d.Logger, d.Tokens, d.Users)

	limited := func(h http.HandlerFunc) http.Handler {
		if d.RateLimiter == nil {
			return h
		}
		return d.RateLimiter.Middleware(h)
	}

	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", articleHandler.List)
			r.With(requireAuth).Post("/", articleHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", articleHandler.Get)
				r.With(requireAuth).Put("/", articleHandler.Update)
				r.With(requireAuth).Delete("/", articleHandler.Delete)
			})
		})

		r.Method(http.MethodPost, "/users", limited(authHandler.Register))
		r.With(requireAuth).Get("/users/me", authHandler.Me)

		r.Method(http.MethodPost, "/login", limited(authHandler.Login))
		r.Method(http.MethodPost, "/token", limited(authHandler.Token))
		r.With(requireAuth).Delete("/refresh-token", authHandler.Logout)
	})

	// Server-rendered pages over the same services
	r.Get("/articles", viewHandler.ListPage)
	r.Get("/articles/{id}", viewHandler.ArticlePage)
	r.Get("/new-article", viewHandler.NewArticlePage)

	return r
}
