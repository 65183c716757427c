package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storereviews/pkg/logger"
	"storereviews/pkg/metrics"
	"storereviews/reviews-service/internal/app/reviews/entity"
)

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders: []string{logger.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	return cfg
}

func SetupRoutes(reviewHandler *ReviewHandler, authMiddleware *AuthMiddleware, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("reviews-service"))

	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "reviews-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	reviews := router.Group("/reviews")
	{
		// Публичные маршруты
		reviews.GET("/:review_id", reviewHandler.GetReview)
		reviews.GET("/stores/:store_id", reviewHandler.ListStoreReviews)
		reviews.GET("/stores/:store_id/rating", reviewHandler.GetStoreRating)
		reviews.GET("/users/:user_id", reviewHandler.ListUserReviews)

		authorized := reviews.Group("")
		authorized.Use(authMiddleware.Authenticate())

		writers := authMiddleware.RequireRole(
			string(entity.RoleCustomer), string(entity.RoleManager), string(entity.RoleMaster),
		)
		authorized.POST("/:order_history_id", writers, reviewHandler.CreateReview)
		authorized.PUT("/:review_id", writers, reviewHandler.UpdateReview)
		authorized.DELETE("/:review_id",
			authMiddleware.RequireRole(string(entity.RoleManager), string(entity.RoleMaster)),
			reviewHandler.DeleteReview,
		)
	}

	return router
}
