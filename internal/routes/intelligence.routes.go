package routes

import (
	"nabz/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterIntelligenceRoutes registers the read-only intelligence surface.
func RegisterIntelligenceRoutes(r *gin.Engine) {
	intel := r.Group("/intelligence")
	{
		intel.GET("/snapshot", controllers.HandleGetSnapshot)
		intel.GET("/workload", controllers.HandleGetWorkload)
		intel.GET("/workload/history", controllers.HandleGetWorkloadHistory)
		intel.GET("/anomalies", controllers.HandleGetAnomalies)
		intel.GET("/score", controllers.HandleGetScore)
		intel.GET("/insights", controllers.HandleGetInsights)
		intel.GET("/suggestions", controllers.HandleGetSuggestions)
		intel.GET("/report", controllers.HandleGetReport)
	}

	session := r.Group("/session")
	{
		session.GET("/history", controllers.HandleGetSessionHistory)
		session.GET("/averages", controllers.HandleGetSessionAverages)
	}

	r.GET("/health", controllers.HandleHealth)
}
