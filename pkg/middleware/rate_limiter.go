package middleware

import (
	"sync"
	"time"

	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit
	b        int
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter allows limit requests per window for each IP, all of which
// may arrive in a burst.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*rate.Limiter),
		r:        rate.Every(window / time.Duration(limit)),
		b:        limit,
		stop:     make(chan struct{}),
	}
	go rl.cleanupVisitors(3 * time.Minute)
	return rl
}

// GetLimiter returns the limiter for the given IP
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.visitors[ip]
	if !ok {
		limiter = rate.NewLimiter(rl.r, rl.b)
		rl.visitors[ip] = limiter
	}
	return limiter
}

// Close stops the cleanup goroutine
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// cleanupVisitors drops limiters that have refilled completely
func (rl *RateLimiter) cleanupVisitors(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, limiter := range rl.visitors {
				if limiter.Tokens() >= float64(rl.b) {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Middleware rejects requests over the limit with RATE_LIMITED
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = c.Request().RemoteAddr
			}
			if !rl.GetLimiter(ip).Allow() {
				return domain.NewRateLimitedError("Too many requests. Please try again later.")
			}
			return next(c)
		}
	}
}
