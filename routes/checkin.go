// routes/checkin.go
package routes

import (
	"github.com/gin-gonic/gin"

	"safetrip/controllers"
)

// SetupCheckInRoutes configures check-in routes
func SetupCheckInRoutes(router *gin.RouterGroup, checkInController *controllers.CheckInController) {
	checkins := router.Group("/checkins")
	{
		checkins.POST("", checkInController.RecordCheckIn)
		checkins.GET("", checkInController.GetHistory)
		checkins.GET("/status", checkInController.GetState)
		checkins.PUT("/schedule", checkInController.ScheduleAuto)
		checkins.DELETE("/schedule", checkInController.CancelAuto)
	}
}
