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

func SetupRoutes(reviewHandler *ReviewHandler, authMiddleware *auth.Middleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("reviews-service"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "reviews-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	moderators := authMiddleware.RequireRole(auth.RoleManager, auth.RoleAdmin)

	reviews := router.Group("/reviews")
	reviews.Use(authMiddleware.Authenticate())
	{
		reviews.GET("/product/:product_id", reviewHandler.GetReviewsByProduct)
		reviews.GET("/product/:product_id/moderation", moderators, reviewHandler.GetModerationSummary)
		reviews.POST("/:review_id/approve", moderators, reviewHandler.ApproveReview)
		reviews.DELETE("/:review_id", moderators, reviewHandler.RejectReview)
	}

	return router
}
