package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"safetrip/models"
)

type ValidationService struct {
	validator *validator.Validate
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func NewValidationService() *ValidationService {
	v := validator.New()

	// Register custom validators
	v.RegisterValidation("phone", validatePhone)
	v.RegisterValidation("checkin_status", validateCheckInStatus)
	v.RegisterValidation("notification_category", validateNotificationCategory)
	v.RegisterValidation("notification_priority", validateNotificationPriority)
	v.RegisterValidation("wall_clock", validateWallClock)

	return &ValidationService{
		validator: v,
	}
}

func (vs *ValidationService) ValidateStruct(s interface{}) []ValidationError {
	var validationErrors []ValidationError

	err := vs.validator.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: vs.getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func (vs *ValidationService) getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "phone":
		return "Invalid phone number format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "checkin_status":
		return "Invalid check-in status"
	case "notification_category":
		return "Invalid notification category"
	case "notification_priority":
		return "Invalid notification priority"
	case "wall_clock":
		return "Time must be in HH:MM format"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

var phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

func validatePhone(fl validator.FieldLevel) bool {
	phone := strings.ReplaceAll(fl.Field().String(), " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	return phoneRegex.MatchString(phone)
}

func validateCheckInStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case models.CheckInStatusSafe, models.CheckInStatusNeedsHelp, models.CheckInStatusEmergency:
		return true
	}
	return false
}

func validateNotificationCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, c := range models.NotificationCategories {
		if value == c {
			return true
		}
	}
	return false
}

func validateNotificationPriority(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}

var wallClockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func validateWallClock(fl validator.FieldLevel) bool {
	return wallClockRegex.MatchString(fl.Field().String())
}

// ParseWallClock converts an HH:MM string into minutes since midnight.
func ParseWallClock(value string) (int, error) {
	if !wallClockRegex.MatchString(value) {
		return 0, fmt.Errorf("invalid wall-clock time %q", value)
	}
	var hours, minutes int
	fmt.Sscanf(value, "%d:%d", &hours, &minutes)
	return hours*60 + minutes, nil
}
