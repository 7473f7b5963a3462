// Package httpkit provides HTTP middleware infrastructure.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/global-church/church-search-api/platform/config"
	"github.com/global-church/church-search-api/platform/logger"

	"github.com/gin-gonic/gin"
)

const gatewaySecretHeader = "X-Gateway-Secret"

// RequestLogger logs HTTP requests with timing.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()

		log.HTTPRequest(c.Request.Method, path, status, float64(latency.Milliseconds()), clientIP)
	}
}

// SecurityHeaders adds security headers to responses.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// GatewayAuth validates the shared secret set by the API gateway in front of
// this service. Requests without a matching secret are rejected with 401.
func GatewayAuth(cfg config.GatewayConfig, log *logger.Logger) gin.HandlerFunc {
	secret := []byte(cfg.GetGatewaySharedSecret())
	return func(c *gin.Context) {
		provided := c.GetHeader(gatewaySecretHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), secret) != 1 {
			if log != nil {
				log.GatewayAuthFailure(c.ClientIP(), c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}
		c.Next()
	}
}
