package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes for the server
func SetupRoutes(router *gin.Engine) {
	jobManager := GetJobManager()
	sseHandler := NewSSEHandler(jobManager)
	handlers := NewHandlers(jobManager)

	// Apply global middleware in order
	router.Use(RecoveryMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware())
	router.Use(LoggingMiddleware())
	router.Use(ErrorHandlingMiddleware())

	// API routes group
	api := router.Group("/api")
	{
		api.Use(RequestValidationMiddleware())

		api.GET("/health", HealthHandler)
		api.GET("/status", func(c *gin.Context) {
			SystemStatusHandler(c, jobManager)
		})

		// Benchmark execution
		api.POST("/benchmark/async", handlers.StartBenchmark)

		// Job management
		api.GET("/jobs", handlers.ListJobs)
		api.GET("/jobs/:jobId", handlers.GetJobStatus)
		api.POST("/jobs/:jobId/cancel", handlers.CancelJob)
		api.POST("/jobs/cleanup", handlers.CleanupJobs)

		// SSE endpoints for real-time progress
		api.OPTIONS("/jobs/:jobId/stream", func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Cache-Control")
			c.Status(200)
		})
		api.GET("/jobs/:jobId/stream", sseHandler.StreamJobProgress)
		api.GET("/system-status/stream", sseHandler.StreamSystemStatus)
	}

	// WebSocket endpoint for progress broadcasts
	router.GET("/ws/jobs/:jobId", jobManager.Hub().ServeWS)

	// Root endpoint with API info
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "LLM Test Bench API",
			"version": "1.0.0",
			"status":  "ok",
			"endpoints": gin.H{
				"health":    "/api/health",
				"status":    "/api/status",
				"benchmark": "/api/benchmark/async",
				"jobs":      "/api/jobs",
			},
		})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Not Found",
			Message: "The requested endpoint does not exist",
			Code:    http.StatusNotFound,
		})
	})
}
