package handler

import (
	"net/http"

	"storefront/pkg/auth"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes настраивает все маршруты Catalog Service
func SetupRoutes(catalogHandler *CatalogHandler, authMiddleware *auth.Middleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("catalog-service"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint - публичный, без аутентификации
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "catalog-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	categories := router.Group("/categories")
	categories.Use(authMiddleware.Authenticate())
	{
		categories.GET("", catalogHandler.GetAllCategories) // Список категорий (кеш Redis)
		// Создание категории с назначением товарам - только manager и admin
		categories.POST("/assignments", authMiddleware.RequireRole(auth.RoleManager, auth.RoleAdmin), catalogHandler.AssignCategory)
	}

	products := router.Group("/products")
	products.Use(authMiddleware.Authenticate())
	{
		products.GET("/:id/pricing", catalogHandler.GetProductPricing)
		products.PATCH("/:id/pricing", authMiddleware.RequireRole(auth.RoleManager, auth.RoleAdmin), catalogHandler.UpdateProductPricing)
	}

	return router
}
