package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"safetrip/models"
	"safetrip/utils"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	environment string
	logger      *logrus.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(environment string, logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		environment: environment,
		logger:      logger,
	}
}

// Handle returns the error handling middleware
func (eh *ErrorHandler) Handle() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				eh.handlePanic(c, err)
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			eh.handleGinErrors(c)
		}
	})
}

// handlePanic handles panic recovery
func (eh *ErrorHandler) handlePanic(c *gin.Context, err interface{}) {
	eh.logger.WithFields(logrus.Fields{
		"panic":      err,
		"stack":      string(debug.Stack()),
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"user_id":    c.GetString("userID"),
	}).Error("Panic recovered")

	var details interface{}
	if eh.environment == "development" {
		details = map[string]interface{}{
			"panic": err,
			"stack": string(debug.Stack()),
		}
	}

	utils.ErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternal, "Internal server error", details)
	c.Abort()
}

// handleGinErrors maps the last collected error onto the response
// envelope.
func (eh *ErrorHandler) handleGinErrors(c *gin.Context) {
	err := c.Errors.Last().Err

	eh.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
		"user_id":    c.GetString("userID"),
	}).Warnf("Request error: %v", err)

	if _, ok := utils.GetServiceError(err); ok {
		utils.HandleServiceError(c, err)
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.ErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidation, "Validation failed", validationErrs.Error())
		return
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.NotFoundResponse(c, "Resource not found")
		return
	}

	utils.InternalServerErrorResponse(c, "Internal server error")
}
