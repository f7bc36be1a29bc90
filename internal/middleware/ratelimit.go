package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter counts hits per user per action inside a rolling window.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, userID, action string, limit int, window time.Duration) (bool, error)
}

// RateLimitMiddleware throttles the betting endpoints. Read-only routes
// pass through untouched.
func RateLimitMiddleware(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			c.Next()
			return
		}

		path := c.Request.URL.Path

		var limit int
		var window time.Duration

		switch {
		case strings.Contains(path, "/bet"):
			limit = 30 // 30 bets per minute
			window = time.Minute
		case strings.Contains(path, "/spin"):
			limit = 60 // slots and roulette resolve instantly
			window = time.Minute
		case strings.Contains(path, "/export"):
			limit = 5
			window = time.Minute
		default:
			c.Next()
			return
		}

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), userID, path, limit, window)
		if err != nil || !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
