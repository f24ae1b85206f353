package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Grade import routes
		v1.POST("/imports/grades", handler.ImportGrades)
		v1.POST("/imports/grades/async", handler.ImportGradesAsync)
		v1.GET("/imports/:job_id", handler.GetImportStatus)
	}
}
