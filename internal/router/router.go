package router

import (
	"net/http"

	"smsnotify/internal/common"
	"smsnotify/internal/config"
	"smsnotify/internal/infra/metrics"
	"smsnotify/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by every domain handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// New creates and configures the Gin router with all middleware and routes.
// A nil m disables the /metrics endpoint and request instrumentation.
func New(
	cfg *config.Config,
	limiter *middleware.RateLimiter,
	m *metrics.Metrics,
	handlers ...RouteRegistrar,
) *gin.Engine {
	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()

	// Global middleware stack (order matters)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	if m != nil {
		r.Use(m.Middleware())
	}
	r.Use(middleware.CORS(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))
	if limiter != nil {
		r.Use(limiter.Middleware())
	}

	// Public routes
	r.GET("/health", healthCheck)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Protected API routes (API key required)
	protectedAPI := r.Group("/api/v1")
	protectedAPI.Use(middleware.Auth(cfg.Auth.APIKeys))
	for _, h := range handlers {
		h.RegisterRoutes(protectedAPI)
	}

	return r
}

// healthCheck handles GET /health
func healthCheck(c *gin.Context) {
	common.Success(c, http.StatusOK, gin.H{
		"status":  "ok",
		"service": "smsnotify",
	})
}
