package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrip/models"
	"safetrip/services"
	"safetrip/utils"
)

type LocationController struct {
	locationService *services.LocationService
}

func NewLocationController(locationService *services.LocationService) *LocationController {
	return &LocationController{locationService: locationService}
}

// UpdateLocation records the device's current position. The check-in and
// SOS flows read this value as the last known fix.
func (lc *LocationController) UpdateLocation(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	snapshot, err := lc.locationService.UpdateLocation(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Update location failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Location updated", snapshot)
}

// GetLocation returns the last known fix for the user
func (lc *LocationController) GetLocation(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	snapshot, err := lc.locationService.CurrentLocation(c.Request.Context(), userID)
	if err != nil {
		utils.NotFoundResponse(c, "No recent location available")
		return
	}

	utils.SuccessResponse(c, "Location retrieved", snapshot)
}
