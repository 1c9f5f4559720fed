package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safetrip/models"
	"safetrip/utils"
)

type settingsHarness struct {
	service       *SettingsService
	settings      *fakeSettingsStore
	notifications *fakeNotificationStore
	clock         *utils.FakeClock
	userID        string
}

func newSettingsHarness(start time.Time) *settingsHarness {
	settings := newFakeSettingsStore()
	notifications := newFakeNotificationStore()
	clock := utils.NewFakeClock(start)
	location := &fakeLocationProvider{snapshot: &models.LocationSnapshot{
		Latitude:  52.52,
		Longitude: 13.405,
		Timestamp: start,
	}}

	notificationService := NewNotificationService(notifications, settings, nil, nil, clock)
	checkIns := NewCheckInService(newFakeCheckInStore(), settings, location, notificationService, clock)
	return &settingsHarness{
		service:       NewSettingsService(settings, checkIns, clock),
		settings:      settings,
		notifications: notifications,
		clock:         clock,
		userID:        primitive.NewObjectID().Hex(),
	}
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestGetSafetySettingsReturnsDefaults(t *testing.T) {
	h := newSettingsHarness(noon())

	settings, err := h.service.GetSafetySettings(context.Background(), h.userID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSOSCountdownSeconds, settings.SOSCountdownSeconds)
	assert.Equal(t, 0, settings.AutoCheckInIntervalMinutes)
	assert.True(t, settings.ShareLocationWithContacts)
}

func TestUpdateSafetySettingsPersistsFields(t *testing.T) {
	h := newSettingsHarness(noon())
	ctx := context.Background()

	updated, err := h.service.UpdateSafetySettings(ctx, h.userID, models.UpdateSafetySettingsRequest{
		SOSCountdownSeconds:       intPtr(45),
		ShareLocationWithContacts: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, 45, updated.SOSCountdownSeconds)
	assert.False(t, updated.ShareLocationWithContacts)

	reloaded, err := h.service.GetSafetySettings(ctx, h.userID)
	require.NoError(t, err)
	assert.Equal(t, 45, reloaded.SOSCountdownSeconds)
}

func TestUpdateSafetySettingsRejectsOutOfRangeCountdown(t *testing.T) {
	h := newSettingsHarness(noon())

	_, err := h.service.UpdateSafetySettings(context.Background(), h.userID, models.UpdateSafetySettingsRequest{
		SOSCountdownSeconds: intPtr(900),
	})
	require.Error(t, err)
	assert.True(t, utils.IsSettingsInvalid(err))
}

func TestIntervalChangeReschedulesWatchdog(t *testing.T) {
	h := newSettingsHarness(noon())
	ctx := context.Background()

	_, err := h.service.UpdateSafetySettings(ctx, h.userID, models.UpdateSafetySettingsRequest{
		AutoCheckInIntervalMinutes: intPtr(30),
	})
	require.NoError(t, err)

	// Grace deadline is 45 minutes out.
	h.clock.Advance(44 * time.Minute)
	assert.Equal(t, 0, h.notifications.count())
	h.clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, h.notifications.count())
}

func TestIntervalZeroDisarmsWatchdog(t *testing.T) {
	h := newSettingsHarness(noon())
	ctx := context.Background()

	_, err := h.service.UpdateSafetySettings(ctx, h.userID, models.UpdateSafetySettingsRequest{
		AutoCheckInIntervalMinutes: intPtr(30),
	})
	require.NoError(t, err)

	_, err = h.service.UpdateSafetySettings(ctx, h.userID, models.UpdateSafetySettingsRequest{
		AutoCheckInIntervalMinutes: intPtr(0),
	})
	require.NoError(t, err)

	h.clock.Advance(10 * time.Hour)
	assert.Equal(t, 0, h.notifications.count())
}

func TestUnchangedIntervalDoesNotRearm(t *testing.T) {
	h := newSettingsHarness(noon())
	ctx := context.Background()

	_, err := h.service.UpdateSafetySettings(ctx, h.userID, models.UpdateSafetySettingsRequest{
		AutoCheckInIntervalMinutes: intPtr(30),
	})
	require.NoError(t, err)

	h.clock.Advance(40 * time.Minute)
	_, err = h.service.UpdateSafetySettings(ctx, h.userID, models.UpdateSafetySettingsRequest{
		AutoCheckInIntervalMinutes: intPtr(30),
	})
	require.NoError(t, err)

	// The original 45-minute deadline still stands.
	h.clock.Advance(6 * time.Minute)
	assert.Equal(t, 1, h.notifications.count())
}

func TestUpdateNotificationSettingsRejectsUnknownCategory(t *testing.T) {
	h := newSettingsHarness(noon())
	ctx := context.Background()

	_, err := h.service.UpdateNotificationSettings(ctx, h.userID, models.UpdateNotificationSettingsRequest{
		Categories: map[string]bool{"carrier_pigeon": true},
	})
	require.Error(t, err)
	assert.True(t, utils.IsSettingsInvalid(err))

	// Nothing was saved.
	settings, err := h.service.GetNotificationSettings(ctx, h.userID)
	require.NoError(t, err)
	_, exists := settings.Categories["carrier_pigeon"]
	assert.False(t, exists)
}

func TestUpdateNotificationSettingsRejectsMalformedQuietHours(t *testing.T) {
	h := newSettingsHarness(noon())

	_, err := h.service.UpdateNotificationSettings(context.Background(), h.userID, models.UpdateNotificationSettingsRequest{
		QuietHours: &models.QuietHours{Enabled: true, StartTime: "25:00", EndTime: "08:00"},
	})
	require.Error(t, err)
	assert.True(t, utils.IsSettingsInvalid(err))
}

func TestUpdateNotificationSettingsMergesCategories(t *testing.T) {
	h := newSettingsHarness(noon())
	ctx := context.Background()

	updated, err := h.service.UpdateNotificationSettings(ctx, h.userID, models.UpdateNotificationSettingsRequest{
		Categories: map[string]bool{models.CategoryMarketing: false},
		QuietHours: &models.QuietHours{Enabled: true, StartTime: "22:00", EndTime: "07:00"},
	})
	require.NoError(t, err)
	assert.False(t, updated.CategoryEnabled(models.CategoryMarketing))
	assert.True(t, updated.CategoryEnabled(models.CategorySafety))
	assert.True(t, updated.QuietHours.Enabled)

	reloaded, err := h.service.GetNotificationSettings(ctx, h.userID)
	require.NoError(t, err)
	assert.Equal(t, "22:00", reloaded.QuietHours.StartTime)
}
