// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	domainerror "github.com/menuinzicht/backend/internal/domain/error"
	"github.com/menuinzicht/backend/internal/integration/entrypoint/dto"
)

const (
	defaultMaxAttempts    = 5
	defaultWindowDuration = 10 * time.Minute
	// sweepEvery triggers a sweep of expired windows after this many new clients.
	sweepEvery = 256
)

// window counts the submissions of one client in a fixed window.
type window struct {
	attempts int
	resetAt  time.Time
}

// RateLimiter limits feedback submissions per client IP in fixed windows.
type RateLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	maxAttempts int
	length      time.Duration
	disabled    bool
	newClients  int
	now         func() time.Time
}

// NewRateLimiter creates a limiter allowing 5 submissions per 10 minutes.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(defaultMaxAttempts, defaultWindowDuration)
}

// NewRateLimiterWithConfig creates a limiter with custom settings.
// A non-positive maxAttempts disables limiting.
func NewRateLimiterWithConfig(maxAttempts int, length time.Duration) *RateLimiter {
	if length <= 0 {
		length = defaultWindowDuration
	}
	return &RateLimiter{
		windows:     make(map[string]*window),
		maxAttempts: maxAttempts,
		length:      length,
		disabled:    maxAttempts <= 0,
		now:         time.Now,
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
// Allowed requests carry X-RateLimit-Remaining.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.disabled {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		if clientIP == "" {
			clientIP = c.Request.RemoteAddr
		}

		remaining, retryAfter, ok := rl.take(clientIP)
		if !ok {
			slog.Warn("Feedback rate limit exceeded", "client_ip", clientIP, "retry_after", retryAfter)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error: "Too many requests. Please try again later.",
				Code:  string(domainerror.ErrCodeRateLimited),
			})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}

// take counts one attempt for key. It returns the attempts left in the window,
// or false and the time until the window resets.
func (rl *RateLimiter) take(key string) (remaining int, retryAfter time.Duration, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, exists := rl.windows[key]
	if !exists || !now.Before(w.resetAt) {
		if !exists {
			rl.trackNewClient(now)
		}
		rl.windows[key] = &window{attempts: 1, resetAt: now.Add(rl.length)}
		return rl.maxAttempts - 1, 0, true
	}

	if w.attempts >= rl.maxAttempts {
		return 0, w.resetAt.Sub(now), false
	}
	w.attempts++
	return rl.maxAttempts - w.attempts, 0, true
}

// trackNewClient sweeps expired windows every sweepEvery new clients so the
// map stays bounded without a background goroutine. Callers hold mu.
func (rl *RateLimiter) trackNewClient(now time.Time) {
	rl.newClients++
	if rl.newClients < sweepEvery {
		return
	}
	rl.newClients = 0
	rl.sweep(now)
}

func (rl *RateLimiter) sweep(now time.Time) {
	for key, w := range rl.windows {
		if !now.Before(w.resetAt) {
			delete(rl.windows, key)
		}
	}
}

// Reset clears all windows.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.windows = make(map[string]*window)
	rl.newClients = 0
}

// Cleanup removes expired windows.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.sweep(rl.now())
}
