// models/response.go
package models

import "time"

// Standard API Response wrapper
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *MetaData   `json:"meta,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Field   string      `json:"field,omitempty"`
}

type MetaData struct {
	Page       int   `json:"page,omitempty"`
	PageSize   int   `json:"pageSize,omitempty"`
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"totalPages,omitempty"`
}

// Health Check Response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
}

// Error Response Codes
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeAuthentication     = "AUTHENTICATION_ERROR"
	ErrCodeAuthorization      = "AUTHORIZATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodePreconditionFailed = "PRECONDITION_FAILED"
	ErrCodeSettingsInvalid    = "SETTINGS_INVALID"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeExternal           = "EXTERNAL_SERVICE_ERROR"
)
