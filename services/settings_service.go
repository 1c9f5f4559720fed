package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"safetrip/interfaces"
	"safetrip/models"
	"safetrip/utils"
)

// SettingsService validates and persists safety and notification
// settings. Invalid values are rejected before anything is saved, so a
// failed update never leaves partial state.
type SettingsService struct {
	settingsStore interfaces.SettingsStore
	checkIns      *CheckInService
	clock         utils.Clock
	validator     *utils.ValidationService
}

func NewSettingsService(settingsStore interfaces.SettingsStore, checkIns *CheckInService, clock utils.Clock) *SettingsService {
	return &SettingsService{
		settingsStore: settingsStore,
		checkIns:      checkIns,
		clock:         clock,
		validator:     utils.NewValidationService(),
	}
}

func (ss *SettingsService) GetSafetySettings(ctx context.Context, userID string) (*models.SafetySettings, error) {
	return ss.settingsStore.GetSafetySettings(ctx, userID)
}

// UpdateSafetySettings applies the provided fields. A changed auto
// check-in interval reschedules the user's watchdog timer.
func (ss *SettingsService) UpdateSafetySettings(ctx context.Context, userID string, req models.UpdateSafetySettingsRequest) (*models.SafetySettings, error) {
	if validationErrors := ss.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewSettingsInvalidError("Invalid safety settings")
	}

	settings, err := ss.settingsStore.GetSafetySettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	intervalChanged := false
	if req.SOSCountdownSeconds != nil {
		settings.SOSCountdownSeconds = *req.SOSCountdownSeconds
	}
	if req.AutoCheckInIntervalMinutes != nil && *req.AutoCheckInIntervalMinutes != settings.AutoCheckInIntervalMinutes {
		settings.AutoCheckInIntervalMinutes = *req.AutoCheckInIntervalMinutes
		intervalChanged = true
	}
	if req.ShareLocationWithContacts != nil {
		settings.ShareLocationWithContacts = *req.ShareLocationWithContacts
	}
	if req.FemaleOnlyServices != nil {
		settings.FemaleOnlyServices = *req.FemaleOnlyServices
	}
	settings.UpdatedAt = ss.clock.Now()

	if err := ss.settingsStore.SaveSafetySettings(ctx, settings); err != nil {
		return nil, err
	}

	if intervalChanged && ss.checkIns != nil {
		ss.checkIns.ApplyInterval(userID, settings.AutoCheckInIntervalMinutes)
		logrus.WithFields(logrus.Fields{
			"userId":   userID,
			"interval": settings.AutoCheckInIntervalMinutes,
		}).Info("Auto check-in interval rescheduled")
	}

	return settings, nil
}

func (ss *SettingsService) GetNotificationSettings(ctx context.Context, userID string) (*models.NotificationSettings, error) {
	return ss.settingsStore.GetNotificationSettings(ctx, userID)
}

func (ss *SettingsService) UpdateNotificationSettings(ctx context.Context, userID string, req models.UpdateNotificationSettingsRequest) (*models.NotificationSettings, error) {
	if err := ss.validateNotificationUpdate(req); err != nil {
		return nil, err
	}

	settings, err := ss.settingsStore.GetNotificationSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.PushEnabled != nil {
		settings.PushEnabled = *req.PushEnabled
	}
	if req.EmailEnabled != nil {
		settings.EmailEnabled = *req.EmailEnabled
	}
	if req.SMSEnabled != nil {
		settings.SMSEnabled = *req.SMSEnabled
	}
	if req.SoundEnabled != nil {
		settings.SoundEnabled = *req.SoundEnabled
	}
	if req.Categories != nil {
		if settings.Categories == nil {
			settings.Categories = make(map[string]bool, len(req.Categories))
		}
		for category, enabled := range req.Categories {
			settings.Categories[category] = enabled
		}
	}
	if req.QuietHours != nil {
		settings.QuietHours = *req.QuietHours
	}
	settings.UpdatedAt = ss.clock.Now()

	if err := ss.settingsStore.SaveNotificationSettings(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// validateNotificationUpdate rejects unknown category names and
// malformed quiet-hours windows before any state changes.
func (ss *SettingsService) validateNotificationUpdate(req models.UpdateNotificationSettingsRequest) error {
	known := make(map[string]struct{}, len(models.NotificationCategories))
	for _, c := range models.NotificationCategories {
		known[c] = struct{}{}
	}
	for category := range req.Categories {
		if _, ok := known[category]; !ok {
			return utils.NewSettingsInvalidError("Unknown notification category: " + category)
		}
	}

	if req.QuietHours != nil && req.QuietHours.Enabled {
		if _, err := utils.ParseWallClock(req.QuietHours.StartTime); err != nil {
			return utils.NewSettingsInvalidError("Invalid quiet hours start time")
		}
		if _, err := utils.ParseWallClock(req.QuietHours.EndTime); err != nil {
			return utils.NewSettingsInvalidError("Invalid quiet hours end time")
		}
	}

	return nil
}
