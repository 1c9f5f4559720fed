// routes/settings.go
package routes

import (
	"github.com/gin-gonic/gin"

	"safetrip/controllers"
)

// SetupSettingsRoutes configures settings and device registration routes
func SetupSettingsRoutes(router *gin.RouterGroup, settingsController *controllers.SettingsController) {
	settings := router.Group("/settings")
	{
		settings.GET("/safety", settingsController.GetSafetySettings)
		settings.PUT("/safety", settingsController.UpdateSafetySettings)
		settings.GET("/notifications", settingsController.GetNotificationSettings)
		settings.PUT("/notifications", settingsController.UpdateNotificationSettings)
	}

	devices := router.Group("/devices")
	{
		devices.POST("", settingsController.RegisterDevice)
		devices.DELETE("", settingsController.UnregisterDevice)
	}
}
