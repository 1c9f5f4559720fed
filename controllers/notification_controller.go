package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrip/models"
	"safetrip/services"
	"safetrip/utils"
)

type NotificationController struct {
	notificationService *services.NotificationService
}

func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// GetNotifications lists the user's notifications newest first
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	req := models.GetNotificationsRequest{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		Unread:   c.Query("unread") == "true",
	}

	notifications, total, err := nc.notificationService.GetNotifications(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Get notifications failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	utils.SuccessResponseWithMeta(c, "Notifications retrieved", notifications, &models.MetaData{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	})
}

// GetByCategory lists notifications of one category
func (nc *NotificationController) GetByCategory(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	category := c.Param("category")
	notifications, err := nc.notificationService.GetByCategory(c.Request.Context(), userID, category)
	if err != nil {
		logrus.Errorf("Get notifications by category failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notifications retrieved", notifications)
}

// MarkRead marks one notification as read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := nc.notificationService.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		logrus.Errorf("Mark notification read failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notification marked as read", nil)
}

// MarkUnread marks one notification as unread
func (nc *NotificationController) MarkUnread(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := nc.notificationService.MarkUnread(c.Request.Context(), userID, c.Param("id")); err != nil {
		logrus.Errorf("Mark notification unread failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notification marked as unread", nil)
}

// MarkAllRead marks every notification for the user as read
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := nc.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		logrus.Errorf("Mark all notifications read failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "All notifications marked as read", nil)
}

// Remove deletes one notification
func (nc *NotificationController) Remove(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := nc.notificationService.Remove(c.Request.Context(), userID, c.Param("id")); err != nil {
		logrus.Errorf("Remove notification failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notification removed", nil)
}

// ClearAll deletes every notification for the user
func (nc *NotificationController) ClearAll(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := nc.notificationService.ClearAll(c.Request.Context(), userID); err != nil {
		logrus.Errorf("Clear notifications failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Notifications cleared", nil)
}

// UnreadCount reports the number of unread notifications
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	count, err := nc.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		logrus.Errorf("Get unread count failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Unread count retrieved", gin.H{"count": count})
}
