package api

import (
	"github.com/gin-gonic/gin"

	"github.com/longform-dev/longform/api/handler"
	"github.com/longform-dev/longform/api/middleware"
	"github.com/longform-dev/longform/cache"
	"github.com/longform-dev/longform/config"
	"github.com/longform-dev/longform/extractor"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(ex *extractor.Extractor, cfg *config.Config, cc *cache.Cache) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(ex))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Extract
	protected.POST("/extract", handler.Extract(ex, cc))

	// Batch
	protected.POST("/batch/extract", handler.PostBatch(ex, cfg.Batch.Concurrency))
	protected.GET("/batch/:id", handler.GetBatch())

	return r
}
