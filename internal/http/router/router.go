// Package router assembles the gin engine: shared middleware, the health
// endpoint and the gateway-protected /v1 group the domain modules mount on.
package router

import (
	"net/http"

	apphttp "github.com/global-church/church-search-api/internal/http"
	"github.com/global-church/church-search-api/internal/http/middleware"
	"github.com/global-church/church-search-api/internal/ratelimit"
	"github.com/global-church/church-search-api/platform/config"
	"github.com/global-church/church-search-api/platform/httpkit"
	"github.com/global-church/church-search-api/platform/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Config combines the config interfaces the router needs.
type Config interface {
	config.HTTPConfig
	config.GatewayConfig
}

func New(cfg Config, log *logger.Logger, limiter ratelimit.Store, modules []apphttp.Module) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(log))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(cfg))

	// Health stays outside the gateway check so the platform can probe it.
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/v1")
	v1.Use(httpkit.GatewayAuth(cfg, log))
	v1.Use(middleware.RateLimit(limiter, log))

	ctx := &apphttp.RouterContext{Engine: engine, V1: v1}
	for _, module := range modules {
		module.RegisterRoutes(ctx)
		log.Info("module routes registered", "module", module.Name())
	}

	return engine
}

func corsMiddleware(cfg Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Gateway-Secret"}
	corsCfg.ExposeHeaders = []string{"X-Limit", "X-Has-More", "X-Next-Cursor"}
	if cfg.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.GetCORSOrigins()
	}
	return cors.New(corsCfg)
}
