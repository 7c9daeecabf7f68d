package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pubdash/classifier/internal/telemetry"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler, tel *telemetry.Provider) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)
	if tel != nil {
		router.GET("/metrics", gin.WrapH(tel.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		classify := v1.Group("/classify")
		{
			classify.POST("", handler.Classify)                             // POST /api/v1/classify
			classify.POST("/explain", handler.Explain)                      // POST /api/v1/classify/explain
			classify.POST("/batch", handler.ClassifyBatch)                  // POST /api/v1/classify/batch
			classify.POST("/batch/balanced", handler.ClassifyBatchBalanced) // POST /api/v1/classify/batch/balanced
		}

		rules := v1.Group("/rules")
		{
			rules.GET("", handler.ListRules)         // GET /api/v1/rules
			rules.POST("", handler.CreateRule)       // POST /api/v1/rules
			rules.PUT("/:id", handler.UpdateRule)    // PUT /api/v1/rules/:id
			rules.DELETE("/:id", handler.DeleteRule) // DELETE /api/v1/rules/:id
		}

		stats := v1.Group("/stats")
		{
			stats.GET("/categories", handler.CategoryStats) // GET /api/v1/stats/categories
		}
	}
}
