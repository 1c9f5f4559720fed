// routes/sos.go
package routes

import (
	"github.com/gin-gonic/gin"

	"safetrip/controllers"
)

// SetupSOSRoutes configures SOS alert routes
func SetupSOSRoutes(router *gin.RouterGroup, sosController *controllers.SOSController) {
	sos := router.Group("/sos")
	{
		sos.POST("/countdown", sosController.StartCountdown)
		sos.DELETE("/countdown", sosController.CancelCountdown)
		sos.POST("/trigger", sosController.Trigger)
		sos.POST("/resolve", sosController.Resolve)
		sos.GET("/status", sosController.GetStatus)
		sos.GET("/history", sosController.GetHistory)
	}
}
