package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrip/utils"
)

type AuthMiddleware struct {
	jwtService *utils.JWTService
}

func NewAuthMiddleware(jwtService *utils.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// RequireAuth validates the JWT access token and sets the user context
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		token := am.extractToken(c)
		if token == "" {
			utils.UnauthorizedResponse(c, "Authentication token required")
			c.Abort()
			return
		}

		claims, err := am.jwtService.ValidateAccessToken(token)
		if err != nil {
			logrus.Warnf("Invalid token: %v", err)
			utils.UnauthorizedResponse(c, "Invalid authentication token")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Set("userRole", claims.Role)

		c.Next()
	})
}

// WebSocketAuth validates a token passed on the websocket upgrade request
// and returns the authenticated user id.
func (am *AuthMiddleware) WebSocketAuth(token string) (string, error) {
	if token == "" {
		return "", utils.NewUnauthorizedError("Authentication token required")
	}

	claims, err := am.jwtService.ValidateAccessToken(token)
	if err != nil {
		return "", utils.NewUnauthorizedError("Invalid authentication token")
	}

	return claims.UserID, nil
}

// extractToken extracts the JWT token from the request
func (am *AuthMiddleware) extractToken(c *gin.Context) string {
	// Check Authorization header
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// Check query parameter (websocket upgrades cannot set headers)
	if token := c.Query("token"); token != "" {
		return token
	}

	// Check cookie
	if token, err := c.Cookie("auth_token"); err == nil {
		return token
	}

	return ""
}

// GetCurrentUserID returns the authenticated user id from context
func GetCurrentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}

	userIDStr, ok := userID.(string)
	return userIDStr, ok
}
