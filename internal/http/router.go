package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ajdawson/windspharm/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(diagnosticsUC *usecase.DiagnosticsUseCase) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable.
	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(diagnosticsUC)

	// API v1 routes.
	v1 := router.Group("/v1")
	// Wind diagnostics.
	wind := v1.Group("/wind")
	wind.POST("/diagnostics", handler.ComputeDiagnostics)

	// Registered front ends.
	v1.GET("/interfaces", handler.GetInterfaces)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
