package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"b2gateway/models"
)

// RateLimiter implements a simple per-IP fixed window rate limit
type RateLimiter struct {
	// Maximum requests per minute per IP
	ratePerMinute int
	// Map to track request counts and window start
	clients map[string]*clientLimit
	mu      sync.Mutex
	now     func() time.Time
}

type clientLimit struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a new rate limiter middleware. A non-positive
// rate disables limiting.
func NewRateLimiter(ratePerMinute int) *RateLimiter {
	return &RateLimiter{
		ratePerMinute: ratePerMinute,
		clients:       make(map[string]*clientLimit),
		now:           time.Now,
	}
}

// Allow records a request from ip and reports whether it is within the limit
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.ratePerMinute <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	// Drop clients idle for more than two windows
	for key, client := range rl.clients {
		if now.Sub(client.windowStart) > 2*time.Minute {
			delete(rl.clients, key)
		}
	}

	client, exists := rl.clients[ip]
	if !exists || now.Sub(client.windowStart) >= time.Minute {
		client = &clientLimit{windowStart: now}
		rl.clients[ip] = client
	}

	client.count++
	return client.count <= rl.ratePerMinute
}

// Limit creates a middleware function for rate limiting
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			resp := models.Failure(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.AbortWithStatusJSON(resp.StatusCode, resp.Body)
			return
		}

		c.Next()
	}
}
