package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrip/models"
	"safetrip/services"
	"safetrip/utils"
)

type ContactController struct {
	contactService *services.ContactService
}

func NewContactController(contactService *services.ContactService) *ContactController {
	return &ContactController{contactService: contactService}
}

// GetContacts lists the user's emergency contacts
func (cc *ContactController) GetContacts(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	contacts, err := cc.contactService.GetContacts(c.Request.Context(), userID)
	if err != nil {
		logrus.Errorf("Get contacts failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Contacts retrieved", contacts)
}

// AddContact creates a new emergency contact
func (cc *ContactController) AddContact(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.AddContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	contact, err := cc.contactService.AddContact(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Add contact failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Contact added", contact)
}

// UpdateContact updates an existing emergency contact
func (cc *ContactController) UpdateContact(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	contact, err := cc.contactService.UpdateContact(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		logrus.Errorf("Update contact failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Contact updated", contact)
}

// RemoveContact deletes an emergency contact
func (cc *ContactController) RemoveContact(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := cc.contactService.RemoveContact(c.Request.Context(), userID, c.Param("id")); err != nil {
		logrus.Errorf("Remove contact failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Contact removed", nil)
}

// PromoteContact makes a contact the user's primary
func (cc *ContactController) PromoteContact(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	contact, err := cc.contactService.PromoteContact(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		logrus.Errorf("Promote contact failed: %v", err)
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Contact promoted to primary", contact)
}
