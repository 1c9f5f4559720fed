// routes/notification.go
package routes

import (
	"github.com/gin-gonic/gin"

	"safetrip/controllers"
)

// SetupNotificationRoutes configures notification routes
func SetupNotificationRoutes(router *gin.RouterGroup, notificationController *controllers.NotificationController) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", notificationController.GetNotifications)
		notifications.GET("/unread-count", notificationController.UnreadCount)
		notifications.GET("/category/:category", notificationController.GetByCategory)
		notifications.PUT("/read-all", notificationController.MarkAllRead)
		notifications.PUT("/:id/read", notificationController.MarkRead)
		notifications.PUT("/:id/unread", notificationController.MarkUnread)
		notifications.DELETE("/:id", notificationController.Remove)
		notifications.DELETE("", notificationController.ClearAll)
	}
}
