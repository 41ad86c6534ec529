package middleware

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests — максимальное количество запросов за Window
	MaxRequests int
	// Window — временное окно для подсчёта запросов
	Window time.Duration
	// KeyPrefix — префикс ключа счётчика
	KeyPrefix string
}

// DefaultExportRateLimitConfig возвращает лимит для endpoint'ов экспорта:
// генерация XLSX заметно дороже обычного запроса аналитики
func DefaultExportRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 10,              // 10 экспортов
		Window:      1 * time.Minute, // за 1 минуту
		KeyPrefix:   "rl:export",
	}
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter ограничивает частоту запросов счётчиками с фиксированным окном.
// Состояние сессий целиком живёт в памяти процесса, поэтому и счётчики
// лимитера хранятся там же, без внешнего хранилища.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]*rateWindow)}
}

// take инкрементирует счётчик ключа и возвращает его значение
// вместе с секундами до сброса окна
func (rl *RateLimiter) take(key string, cfg RateLimitConfig) (count int, retryAfter int) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &rateWindow{resetAt: now.Add(cfg.Window)}
		rl.windows[key] = w
	}
	w.count++

	retryAfter = int(time.Until(w.resetAt).Seconds())
	if retryAfter < 0 {
		retryAfter = int(cfg.Window.Seconds())
	}
	return w.count, retryAfter
}

// Limit возвращает Gin middleware с заданной конфигурацией.
// Ключ формируется из IP + endpoint path.
func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		path := c.FullPath() // Gin route pattern, e.g. "/api/analytics/export"
		if path == "" {
			path = c.Request.URL.Path
		}

		key := fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, clientIP, path)
		count, retryAfter := rl.take(key, cfg)

		remaining := cfg.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", retryAfter))

		if count > cfg.MaxRequests {
			log.Printf("[RateLimiter] Rate limit exceeded for IP=%s path=%s. Count=%d, Limit=%d",
				clientIP, path, count, cfg.MaxRequests)

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"error_type":  "rate_limited",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
