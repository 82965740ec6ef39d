package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/handlers"
	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/internal/repository"
)

// Dependencies are the services the HTTP layer is built on
type Dependencies struct {
	Users           middleware.UserAuthenticator
	Orders          handlers.OrderService
	Settings        handlers.SettingsService
	Quotes          handlers.CartQuoter
	IdempotencyKeys repository.IdempotencyKeyRepository
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(metricsMiddleware(m))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.POST("/cart/quote", handlers.HandleQuoteCart(deps.Quotes))

		// User routes (require authentication)
		userRoutes := v1.Group("")
		userRoutes.Use(middleware.AuthMiddleware(deps.Users, logger))
		{
			userRoutes.POST("/orders",
				middleware.IdempotencyMiddleware(deps.IdempotencyKeys, logger),
				handlers.HandleCreateOrder(deps.Orders, logger),
			)
			userRoutes.GET("/orders", handlers.HandleListMyOrders(deps.Orders, logger))
			userRoutes.GET("/orders/:id", handlers.HandleGetOrder(deps.Orders, logger))
			userRoutes.GET("/me", handlers.HandleMe())
		}

		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AuthMiddleware(deps.Users, logger))
		adminRoutes.Use(middleware.RequireAdmin())
		{
			adminRoutes.GET("/orders", handlers.HandleAdminListOrders(deps.Orders, logger))
			adminRoutes.POST("/orders/:id/status", handlers.HandleUpdateOrderStatus(deps.Orders, logger))
			adminRoutes.GET("/settings/shipping", handlers.HandleGetShippingSettings(deps.Settings, logger))
			adminRoutes.PUT("/settings/shipping", handlers.HandleUpdateShippingSettings(deps.Settings, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// metricsMiddleware records request counts and latency by route template
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
