package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"safetrip/models"
)

// Success responses
func SuccessResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func SuccessResponseWithMeta(c *gin.Context, message string, data interface{}, meta *models.MetaData) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
		Timestamp: time.Now(),
	})
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Message: message,
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	})
}

func ValidationErrorResponse(c *gin.Context, validationErrors []ValidationError) {
	ErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidation, "Validation failed", validationErrors)
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidation, message, nil)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized access"
	}
	ErrorResponse(c, http.StatusUnauthorized, models.ErrCodeAuthentication, message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, models.ErrCodeAuthorization, message, nil)
}

func NotFoundResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, models.ErrCodeNotFound, message, nil)
}

func PreconditionFailedResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnprocessableEntity, models.ErrCodePreconditionFailed, message, nil)
}

func ConflictResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, models.ErrCodeConflict, message, nil)
}

func InternalServerErrorResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternal, message, nil)
}

// HandleServiceError maps a ServiceError onto the response envelope,
// falling back to a 500 for unknown error values.
func HandleServiceError(c *gin.Context, err error) {
	if serviceErr, ok := GetServiceError(err); ok {
		statusCode := serviceErr.StatusCode
		if statusCode == 0 {
			statusCode = http.StatusInternalServerError
		}
		ErrorResponse(c, statusCode, serviceErr.Code, serviceErr.Message, serviceErr.Details)
		return
	}
	InternalServerErrorResponse(c, "Internal server error")
}
