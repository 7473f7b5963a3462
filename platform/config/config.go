// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// GatewayConfig provides the shared secret used to authenticate the API
// gateway hop in front of this service.
type GatewayConfig interface {
	GetGatewaySharedSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// RedisConfig provides settings for the optional Redis-backed rate limiter.
type RedisConfig interface {
	GetRedisAddr() string
	IsRedisEnabled() bool
}

// RateLimitConfig provides request rate limit settings.
type RateLimitConfig interface {
	GetRateLimitPerWindow() int
	GetRateLimitWindow() time.Duration
}

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	GatewaySharedSecret string
	RedisAddr           string
	RateLimitPerWindow  int
	RateLimitWindow     time.Duration
	CORSAllowAll        bool
	CORSOrigins         []string
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// GatewayConfig implementation
func (c *Config) GetGatewaySharedSecret() string { return c.GatewaySharedSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// RedisConfig implementation
func (c *Config) GetRedisAddr() string { return c.RedisAddr }
func (c *Config) IsRedisEnabled() bool { return c.RedisAddr != "" }

// RateLimitConfig implementation
func (c *Config) GetRateLimitPerWindow() int        { return c.RateLimitPerWindow }
func (c *Config) GetRateLimitWindow() time.Duration { return c.RateLimitWindow }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		GatewaySharedSecret: getEnv("GATEWAY_SHARED_SECRET", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RateLimitPerWindow:  mustInt(getEnv("RATE_LIMIT_PER_WINDOW", "120")),
		RateLimitWindow:     mustDuration(getEnv("RATE_LIMIT_WINDOW", "1m")),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.GatewaySharedSecret == "" {
		return nil, fmt.Errorf("GATEWAY_SHARED_SECRET is required")
	}
	if cfg.RateLimitPerWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_WINDOW must be positive")
	}
	if cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW must be a positive duration")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
