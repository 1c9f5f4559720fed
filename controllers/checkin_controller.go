package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrip/models"
	"safetrip/services"
	"safetrip/utils"
)

type CheckInController struct {
	checkInService *services.CheckInService
}

func NewCheckInController(checkInService *services.CheckInService) *CheckInController {
	return &CheckInController{checkInService: checkInService}
}

// RecordCheckIn records a manual safety check-in
func (cc *CheckInController) RecordCheckIn(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.RecordCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	checkIn, err := cc.checkInService.RecordCheckIn(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Record check-in failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Check-in recorded", checkIn)
}

// GetHistory lists the user's check-ins newest first
func (cc *CheckInController) GetHistory(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	checkIns, err := cc.checkInService.GetHistory(c.Request.Context(), userID, limit)
	if err != nil {
		logrus.Errorf("Get check-in history failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Check-ins retrieved", checkIns)
}

// GetState reports the scheduler view, including overdue status
func (cc *CheckInController) GetState(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	state, err := cc.checkInService.GetState(c.Request.Context(), userID)
	if err != nil {
		logrus.Errorf("Get check-in state failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Check-in state retrieved", state)
}

// ScheduleAuto sets the automatic check-in interval
func (cc *CheckInController) ScheduleAuto(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.ScheduleCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	settings, err := cc.checkInService.ScheduleAuto(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Schedule auto check-in failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Auto check-in scheduled", settings)
}

// CancelAuto disables the automatic check-in expectation
func (cc *CheckInController) CancelAuto(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := cc.checkInService.CancelAuto(c.Request.Context(), userID); err != nil {
		logrus.Errorf("Cancel auto check-in failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Auto check-in cancelled", nil)
}
