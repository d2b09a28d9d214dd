package router

import (
	"github.com/gin-gonic/gin"

	"roofio/internal/handler"
	"roofio/internal/metrics"
	"roofio/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	corsOrigins []string,
	docH *handler.DocumentHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health and metrics
	r.GET("/healthz", healthH.Liveness)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/document-types", docH.DocumentTypes)

	docs := v1.Group("/documents")
	docs.POST("/parse", docH.Parse)
	docs.POST("/parse-text", docH.ParseText)

	return r
}
