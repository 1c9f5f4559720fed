package utils

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetUserID retrieves the user ID from the Gin context, assuming it is stored as "userID" in context.
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get("userID"); exists {
		if idStr, ok := userID.(string); ok {
			return idStr
		}
	}
	return ""
}

// UUID Generation
func GenerateUUID() string {
	return uuid.New().String()
}

// ParseObjectID converts a hex string into an ObjectID, reporting validity.
func ParseObjectID(id string) (primitive.ObjectID, bool) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return objectID, true
}

// String Utilities
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}

func NormalizePhone(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	return strings.ReplaceAll(phone, "-", "")
}

// MinutesOfDay returns the wall-clock minute of day for t.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
