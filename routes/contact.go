// routes/contact.go
package routes

import (
	"github.com/gin-gonic/gin"

	"safetrip/controllers"
)

// SetupContactRoutes configures emergency contact routes
func SetupContactRoutes(router *gin.RouterGroup, contactController *controllers.ContactController) {
	contacts := router.Group("/contacts")
	{
		contacts.GET("", contactController.GetContacts)
		contacts.POST("", contactController.AddContact)
		contacts.PUT("/:id", contactController.UpdateContact)
		contacts.DELETE("/:id", contactController.RemoveContact)
		contacts.PUT("/:id/primary", contactController.PromoteContact)
	}
}
