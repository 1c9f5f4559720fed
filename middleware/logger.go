package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Logger    *logrus.Logger
	SkipPaths []string
}

// LoggerMiddleware returns a structured request logger. Each request
// carries an X-Request-ID that is generated when the client sends none.
func LoggerMiddleware(config LoggerConfig) gin.HandlerFunc {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	return gin.HandlerFunc(func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		if shouldSkipPath(c.Request.URL.Path, config.SkipPaths) {
			c.Next()
			return
		}

		startTime := time.Now()
		c.Next()
		duration := time.Since(startTime)

		fields := logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    duration.String(),
			"latency_ms": float64(duration.Nanoseconds()) / 1000000.0,
			"ip":         c.ClientIP(),
			"user_agent": c.GetHeader("User-Agent"),
		}

		if userID := c.GetString("userID"); userID != "" {
			fields["user_id"] = userID
		}

		if len(c.Errors) > 0 {
			errs := make([]string, len(c.Errors))
			for i, err := range c.Errors {
				errs[i] = err.Error()
			}
			fields["errors"] = errs
		}

		logRequest(config.Logger, c.Writer.Status(), duration, fields)
	})
}

// DefaultLoggerMiddleware returns a logger middleware with default configuration
func DefaultLoggerMiddleware() gin.HandlerFunc {
	return LoggerMiddleware(LoggerConfig{
		Logger: logrus.StandardLogger(),
		SkipPaths: []string{
			"/health",
			"/favicon.ico",
		},
	})
}

// logRequest logs the HTTP request at a level derived from the outcome
func logRequest(logger *logrus.Logger, statusCode int, duration time.Duration, fields logrus.Fields) {
	message := fmt.Sprintf("%s %s %d %s",
		fields["method"],
		fields["path"],
		statusCode,
		duration,
	)

	switch {
	case statusCode >= 500:
		logger.WithFields(fields).Error(message)
	case statusCode >= 400:
		logger.WithFields(fields).Warn(message)
	case duration > 5*time.Second:
		logger.WithFields(fields).Warn(message + " (slow request)")
	default:
		logger.WithFields(fields).Info(message)
	}
}

// shouldSkipPath checks if path should be skipped
func shouldSkipPath(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}
