package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError represents a service-level error with context
type ServiceError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Details    string `json:"details,omitempty"`
	Cause      error  `json:"-"` // Original error, not exposed in JSON
}

func (e ServiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error
func NewServiceError(code, message string) error {
	return ServiceError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewServiceErrorWithCause creates a service error that wraps another error
func NewServiceErrorWithCause(code, message string, cause error) error {
	return ServiceError{
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: http.StatusInternalServerError,
	}
}

// GetServiceError extracts a ServiceError from an error
func GetServiceError(err error) (ServiceError, bool) {
	var serviceErr ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return ServiceError{}, false
}

// Error code constants
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodePreconditionFailed = "PRECONDITION_FAILED"
	ErrCodeSettingsInvalid    = "SETTINGS_INVALID"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeAuthentication     = "AUTHENTICATION_ERROR"
	ErrCodeAuthorization      = "AUTHORIZATION_ERROR"
	ErrCodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeDatabase           = "DATABASE_ERROR"
	ErrCodeDispatch           = "DISPATCH_ERROR"
)

// NewPreconditionFailedError reports a failed operation precondition
// (missing location fix, no emergency contacts). No state is mutated when
// this is returned.
func NewPreconditionFailedError(message string) error {
	return ServiceError{
		Code:       ErrCodePreconditionFailed,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewSettingsInvalidError rejects a settings update before persistence,
// leaving the prior settings intact.
func NewSettingsInvalidError(message string) error {
	return ServiceError{
		Code:       ErrCodeSettingsInvalid,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(resource string) error {
	return ServiceError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func NewConflictError(message string) error {
	return ServiceError{
		Code:       ErrCodeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewUnauthorizedError(message string) error {
	return ServiceError{
		Code:       ErrCodeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string) error {
	return ServiceError{
		Code:       ErrCodeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewBadRequestError(message string) error {
	return ServiceError{
		Code:       ErrCodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewInternalError(message string) error {
	return ServiceError{
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func NewDatabaseError(operation string, cause error) error {
	return ServiceError{
		Code:       ErrCodeDatabase,
		Message:    fmt.Sprintf("Database operation failed: %s", operation),
		Cause:      cause,
		StatusCode: http.StatusInternalServerError,
	}
}

// IsPreconditionFailed reports whether err carries the precondition code.
func IsPreconditionFailed(err error) bool {
	serviceErr, ok := GetServiceError(err)
	return ok && serviceErr.Code == ErrCodePreconditionFailed
}

// IsNotFound reports whether err carries the not-found code. Idempotent
// delete/read paths treat this as a no-op instead of surfacing it.
func IsNotFound(err error) bool {
	serviceErr, ok := GetServiceError(err)
	return ok && serviceErr.Code == ErrCodeNotFound
}

// IsSettingsInvalid reports whether err carries the settings-invalid code.
func IsSettingsInvalid(err error) bool {
	serviceErr, ok := GetServiceError(err)
	return ok && serviceErr.Code == ErrCodeSettingsInvalid
}

// Common error instances
var (
	ErrLocationUnavailable = NewPreconditionFailedError("Current location is unavailable")
	ErrNoEmergencyContacts = NewPreconditionFailedError("No emergency contacts configured")
	ErrAlertNotFound       = NewNotFoundError("Alert")
	ErrContactNotFound     = NewNotFoundError("Contact")
	ErrSOSAlreadyActive    = NewConflictError("An SOS alert is already active")
)
