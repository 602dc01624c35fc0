package api

import (
	"github.com/RishiKendai/pairwise/internal/config"
	"github.com/gin-gonic/gin"
)

// multipart bodies hold two files plus headers
const multipartOverhead = 64 << 10

func SetupRoutes(cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(MetricsMiddleware())
	router.Use(ErrorHandlerMiddleware())
	router.MaxMultipartMemory = 2*cfg.MaxUploadSize + multipartOverhead

	handler := NewHandler(cfg, deps)
	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.Use(RateLimitMiddleware(rateLimiter))
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
	}

	alignments := v1.Group("/alignments")
	alignments.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	alignments.Use(RateLimitMiddleware(rateLimiter))
	{
		alignments.POST("", handler.CreateAlignment)
		alignments.GET("", handler.ListAlignments)
		alignments.GET("/:id", handler.GetAlignment)
		alignments.GET("/:id/status", handler.GetAlignmentStatus)
	}

	return router
}
