package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowAllOrigins  bool
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig returns default CORS configuration
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowAllOrigins: false,
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:8080",
			"https://safetrip.app",
			"https://www.safetrip.app",
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Length",
			"Content-Type",
			"Authorization",
			"Accept",
			"Cache-Control",
			"X-Requested-With",
			"X-Request-ID",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// ProductionCORSConfig returns production-safe CORS configuration
func ProductionCORSConfig() CORSConfig {
	config := DefaultCORSConfig()
	config.AllowOrigins = []string{
		"https://safetrip.app",
		"https://www.safetrip.app",
		"https://app.safetrip.app",
	}
	config.MaxAge = 24 * time.Hour
	return config
}

// CORS returns a CORS middleware with the given configuration
func CORS(config CORSConfig) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if c.Request.Method == "OPTIONS" {
			handlePreflight(c, config, origin)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if origin != "" && !isOriginAllowed(config, origin) {
			logrus.Warnf("CORS: Origin not allowed: %s", origin)
			c.Next()
			return
		}

		setAllowOrigin(c, config, origin)
		if len(config.ExposeHeaders) > 0 {
			c.Header("Access-Control-Expose-Headers", strings.Join(config.ExposeHeaders, ", "))
		}
		c.Header("Vary", "Origin")

		c.Next()
	})
}

func handlePreflight(c *gin.Context, config CORSConfig, origin string) {
	if !isOriginAllowed(config, origin) {
		logrus.Warnf("CORS: Origin not allowed: %s", origin)
		return
	}

	setAllowOrigin(c, config, origin)
	c.Header("Access-Control-Allow-Methods", strings.Join(config.AllowMethods, ", "))
	c.Header("Access-Control-Allow-Headers", strings.Join(config.AllowHeaders, ", "))
	if config.MaxAge > 0 {
		c.Header("Access-Control-Max-Age", strconv.Itoa(int(config.MaxAge.Seconds())))
	}
}

func setAllowOrigin(c *gin.Context, config CORSConfig, origin string) {
	switch {
	case config.AllowCredentials && origin != "":
		c.Header("Access-Control-Allow-Origin", origin)
	case config.AllowAllOrigins:
		c.Header("Access-Control-Allow-Origin", "*")
	case origin != "":
		c.Header("Access-Control-Allow-Origin", origin)
	}
	if config.AllowCredentials {
		c.Header("Access-Control-Allow-Credentials", "true")
	}
}

// isOriginAllowed checks if the origin is allowed
func isOriginAllowed(config CORSConfig, origin string) bool {
	if config.AllowAllOrigins {
		return true
	}
	if origin == "" {
		return false
	}

	for _, allowedOrigin := range config.AllowOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
		// Support wildcard subdomains (e.g., *.example.com)
		if strings.HasPrefix(allowedOrigin, "*.") {
			domain := allowedOrigin[2:]
			if strings.HasSuffix(origin, "."+domain) || origin == domain {
				return true
			}
		}
	}

	return false
}

// DevelopmentCORS returns permissive CORS for development
func DevelopmentCORS() gin.HandlerFunc {
	return CORS(CORSConfig{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// CORSMiddleware selects the CORS configuration for the environment
func CORSMiddleware(environment string) gin.HandlerFunc {
	switch environment {
	case "production":
		return CORS(ProductionCORSConfig())
	case "development":
		return DevelopmentCORS()
	default:
		return CORS(DefaultCORSConfig())
	}
}
