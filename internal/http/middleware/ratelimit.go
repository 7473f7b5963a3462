// Package middleware provides HTTP middleware that depends on application
// internals (unlike platform/httpkit, which is self-contained).
package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/global-church/church-search-api/internal/ratelimit"
	"github.com/global-church/church-search-api/platform/httpkit"
	"github.com/global-church/church-search-api/platform/logger"

	"github.com/gin-gonic/gin"
)

// RateLimit rejects requests once the store reports the client over its
// budget. Store errors fail open: a broken limiter backend should degrade
// rate limiting, not search availability.
func RateLimit(store ratelimit.Store, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := store.Check(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("rate limit check failed", "error", err.Error())
			c.Next()
			return
		}

		if result.Limited {
			if result.RetryAfter > 0 {
				seconds := int(math.Ceil(result.RetryAfter.Seconds()))
				c.Header("Retry-After", strconv.Itoa(seconds))
			}
			log.RateLimitExceeded(c.ClientIP(), c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httpkit.ErrorResponse{
				Error: "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
