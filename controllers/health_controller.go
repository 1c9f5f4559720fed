package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"safetrip/database"
	"safetrip/models"
	"safetrip/websocket"
)

type HealthController struct {
	redisClient *redis.Client
	hub         *websocket.Hub
	startTime   time.Time
	version     string
}

func NewHealthController(redisClient *redis.Client, hub *websocket.Hub, version string) *HealthController {
	return &HealthController{
		redisClient: redisClient,
		hub:         hub,
		startTime:   time.Now(),
		version:     version,
	}
}

// Health reports service liveness and dependency status
func (hc *HealthController) Health(c *gin.Context) {
	services := map[string]string{}
	status := "healthy"

	if database.IsConnected() {
		services["mongodb"] = "healthy"
	} else {
		services["mongodb"] = "unhealthy"
		status = "degraded"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := hc.redisClient.Ping(ctx).Err(); err != nil {
		services["redis"] = "unhealthy"
		status = "degraded"
	} else {
		services["redis"] = "healthy"
	}

	services["websocket"] = "healthy"

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
		Version:   hc.version,
		Uptime:    time.Since(hc.startTime).Round(time.Second).String(),
	})
}
