package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrip/middleware"
	"safetrip/utils"
	"safetrip/websocket"
)

type WebSocketController struct {
	hub  *websocket.Hub
	auth *middleware.AuthMiddleware
}

func NewWebSocketController(hub *websocket.Hub, auth *middleware.AuthMiddleware) *WebSocketController {
	return &WebSocketController{
		hub:  hub,
		auth: auth,
	}
}

// HandleWebSocket upgrades the connection and attaches the client to the
// presentation hub. The token comes from the query string because
// browsers cannot set headers on websocket upgrades.
func (wsc *WebSocketController) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	userID, err := wsc.auth.WebSocketAuth(token)
	if err != nil {
		logrus.Warnf("WebSocket authentication failed: %v", err)
		utils.UnauthorizedResponse(c, "Invalid authentication token")
		return
	}

	if err := websocket.ServeWS(wsc.hub, userID, c.Writer, c.Request); err != nil {
		logrus.Errorf("WebSocket upgrade failed: %v", err)
	}
}
