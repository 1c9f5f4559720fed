package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrip/models"
	"safetrip/services"
	"safetrip/utils"
)

type SOSController struct {
	sosService *services.SOSService
}

func NewSOSController(sosService *services.SOSService) *SOSController {
	return &SOSController{sosService: sosService}
}

// StartCountdown starts the SOS countdown for the current user
func (sc *SOSController) StartCountdown(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.StartCountdownRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	status, err := sc.sosService.StartCountdown(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Start SOS countdown failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "SOS countdown started", status)
}

// CancelCountdown cancels a running SOS countdown
func (sc *SOSController) CancelCountdown(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	status, err := sc.sosService.CancelCountdown(c.Request.Context(), userID)
	if err != nil {
		logrus.Errorf("Cancel SOS countdown failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "SOS countdown cancelled", status)
}

// Trigger activates an SOS alert immediately
func (sc *SOSController) Trigger(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.TriggerSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	alert, err := sc.sosService.TriggerImmediate(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Trigger SOS failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "SOS alert activated", alert)
}

// Resolve terminalizes the active SOS alert
func (sc *SOSController) Resolve(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.ResolveSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	alert, err := sc.sosService.Resolve(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Resolve SOS failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "SOS alert resolved", alert)
}

// GetStatus reports the current SOS session state
func (sc *SOSController) GetStatus(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	status, err := sc.sosService.GetStatus(c.Request.Context(), userID)
	if err != nil {
		logrus.Errorf("Get SOS status failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "SOS status retrieved", status)
}

// GetHistory lists the user's past SOS alerts
func (sc *SOSController) GetHistory(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	alerts, err := sc.sosService.GetHistory(c.Request.Context(), userID, limit)
	if err != nil {
		logrus.Errorf("Get SOS history failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "SOS history retrieved", alerts)
}
