package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter ограничивает число обращений к эндпоинтам с учетными данными
// (регистрация, логин, обновление токена) в фиксированном окне на один IP.
type RateLimiter struct {
	clients  map[string]*attempts
	logger   *slog.Logger
	now      func() time.Time
	done     chan struct{}
	limit    int
	window   time.Duration
	mu       sync.Mutex
	stopOnce sync.Once
}

// attempts - счетчик попыток клиента в текущем окне
type attempts struct {
	windowStart time.Time
	count       int
}

// NewRateLimiter создает limiter: не больше limit запросов за window с одного IP.
// Устаревшие счетчики вычищаются в фоне до вызова Stop.
func NewRateLimiter(limit int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*attempts),
		logger:  logger,
		now:     time.Now,
		done:    make(chan struct{}),
		limit:   limit,
		window:  window,
	}

	go rl.sweepLoop()

	return rl
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

// sweep удаляет счетчики, чье окно закончилось
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, a := range rl.clients {
		if now.Sub(a.windowStart) >= rl.window {
			delete(rl.clients, ip)
		}
	}
}

// Stop останавливает фоновую очистку. Повторный вызов безопасен.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// Allow учитывает попытку клиента ip. Если лимит исчерпан, возвращает false
// и время до начала следующего окна.
func (rl *RateLimiter) Allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	a, ok := rl.clients[ip]
	if !ok || now.Sub(a.windowStart) >= rl.window {
		rl.clients[ip] = &attempts{windowStart: now, count: 1}
		return true, 0
	}

	if a.count >= rl.limit {
		return false, a.windowStart.Add(rl.window).Sub(now)
	}
	a.count++
	return true, 0
}

// Middleware отвечает 429 с заголовком Retry-After, когда лимит исчерпан
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		allowed, wait := rl.Allow(ip)
		if !allowed {
			rl.logger.WarnContext(r.Context(), "too many credential attempts",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
				slog.Duration("retry_after", wait),
			)
			w.Header().Set("Retry-After", retryAfterSeconds(wait))
			writeError(w, "too many attempts, please try again later", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// retryAfterSeconds округляет ожидание вверх до целых секунд, минимум 1
func retryAfterSeconds(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientIP извлекает IP адрес клиента из RemoteAddr.
// X-Forwarded-For и X-Real-IP разбирает chi middleware.RealIP до этого middleware.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
