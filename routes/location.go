// routes/location.go
package routes

import (
	"github.com/gin-gonic/gin"

	"safetrip/controllers"
)

// SetupLocationRoutes configures last-known-location routes
func SetupLocationRoutes(router *gin.RouterGroup, locationController *controllers.LocationController) {
	location := router.Group("/location")
	{
		location.PUT("", locationController.UpdateLocation)
		location.GET("", locationController.GetLocation)
	}
}
