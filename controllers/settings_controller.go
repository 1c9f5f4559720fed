package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrip/models"
	"safetrip/services"
	"safetrip/utils"
)

type SettingsController struct {
	settingsService *services.SettingsService
	pushService     *services.PushService
}

func NewSettingsController(settingsService *services.SettingsService, pushService *services.PushService) *SettingsController {
	return &SettingsController{
		settingsService: settingsService,
		pushService:     pushService,
	}
}

// GetSafetySettings returns the user's safety settings
func (sc *SettingsController) GetSafetySettings(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	settings, err := sc.settingsService.GetSafetySettings(c.Request.Context(), userID)
	if err != nil {
		logrus.Errorf("Get safety settings failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Safety settings retrieved", settings)
}

// UpdateSafetySettings updates the user's safety settings
func (sc *SettingsController) UpdateSafetySettings(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.UpdateSafetySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	settings, err := sc.settingsService.UpdateSafetySettings(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Update safety settings failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Safety settings updated", settings)
}

// GetNotificationSettings returns the user's notification settings
func (sc *SettingsController) GetNotificationSettings(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	settings, err := sc.settingsService.GetNotificationSettings(c.Request.Context(), userID)
	if err != nil {
		logrus.Errorf("Get notification settings failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notification settings retrieved", settings)
}

// UpdateNotificationSettings updates the user's notification settings
func (sc *SettingsController) UpdateNotificationSettings(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.UpdateNotificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	settings, err := sc.settingsService.UpdateNotificationSettings(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Update notification settings failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notification settings updated", settings)
}

// RegisterDevice registers a device token for push delivery
func (sc *SettingsController) RegisterDevice(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		DeviceToken string `json:"deviceToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if err := sc.pushService.RegisterDevice(c.Request.Context(), userID, req.DeviceToken); err != nil {
		logrus.Errorf("Register device failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Device registered", nil)
}

// UnregisterDevice removes a device token from push delivery
func (sc *SettingsController) UnregisterDevice(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		DeviceToken string `json:"deviceToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if err := sc.pushService.UnregisterDevice(c.Request.Context(), userID, req.DeviceToken); err != nil {
		logrus.Errorf("Unregister device failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Device unregistered", nil)
}
