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

type sosHarness struct {
	service       *SOSService
	alerts        *fakeSOSStore
	settings      *fakeSettingsStore
	location      *fakeLocationProvider
	contacts      *fakeContactStore
	dispatcher    *fakeDispatcher
	notifications *fakeNotificationStore
	clock         *utils.FakeClock
	userID        string
}

func newSOSHarness(start time.Time) *sosHarness {
	alerts := newFakeSOSStore()
	settings := newFakeSettingsStore()
	contacts := newFakeContactStore()
	notifications := newFakeNotificationStore()
	dispatcher := &fakeDispatcher{}
	clock := utils.NewFakeClock(start)
	location := &fakeLocationProvider{snapshot: &models.LocationSnapshot{
		Latitude:  40.71,
		Longitude: -74.01,
		Accuracy:  15,
		Timestamp: start,
	}}

	notificationService := NewNotificationService(notifications, settings, nil, nil, clock)
	directory := NewContactService(contacts, clock)
	return &sosHarness{
		service:       NewSOSService(alerts, settings, location, directory, dispatcher, notificationService, nil, clock),
		alerts:        alerts,
		settings:      settings,
		location:      location,
		contacts:      contacts,
		dispatcher:    dispatcher,
		notifications: notifications,
		clock:         clock,
		userID:        primitive.NewObjectID().Hex(),
	}
}

func (h *sosHarness) seedContact(name string, primary bool) {
	userObjectID, _ := primitive.ObjectIDFromHex(h.userID)
	_ = h.contacts.Create(context.Background(), &models.EmergencyContact{
		UserID:       userObjectID,
		Name:         name,
		Phone:        "+15555550100",
		Relationship: "friend",
		IsPrimary:    primary,
		CreatedAt:    h.clock.Now(),
		UpdatedAt:    h.clock.Now(),
	})
}

func TestStartCountdownArmsTimer(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)

	status, err := h.service.StartCountdown(context.Background(), h.userID, models.StartCountdownRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.SOSStateCountdown, status.State)
	assert.Equal(t, models.DefaultSOSCountdownSeconds, status.CountdownLeft)
	assert.Equal(t, 40.71, status.Location.Latitude)
	assert.Empty(t, h.alerts.alerts)
}

func TestCancelBeforeFireReturnsToIdle(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)
	ctx := context.Background()

	_, err := h.service.StartCountdown(ctx, h.userID, models.StartCountdownRequest{})
	require.NoError(t, err)

	status, err := h.service.CancelCountdown(ctx, h.userID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStateIdle, status.State)

	// The stopped timer's deadline passing must not trigger anything.
	h.clock.Advance(time.Minute)
	assert.Empty(t, h.alerts.alerts)
	assert.Equal(t, 0, h.dispatcher.count())
}

func TestCancelWithNothingRunningIsNoOp(t *testing.T) {
	h := newSOSHarness(noon())

	status, err := h.service.CancelCountdown(context.Background(), h.userID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStateIdle, status.State)
}

func TestCountdownElapseActivatesExactlyOneAlert(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)
	h.seedContact("Bob", false)
	ctx := context.Background()

	_, err := h.service.StartCountdown(ctx, h.userID, models.StartCountdownRequest{Message: "walking home"})
	require.NoError(t, err)

	h.clock.Advance(time.Duration(models.DefaultSOSCountdownSeconds) * time.Second)

	require.Equal(t, 1, h.alerts.activeCount(h.userID))
	status, err := h.service.GetStatus(ctx, h.userID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStateActive, status.State)
	require.NotNil(t, status.Alert)
	assert.Equal(t, "walking home", status.Alert.Message)

	// One dispatch per contact, one self notification.
	assert.Eventually(t, func() bool { return h.dispatcher.count() == 2 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return h.notifications.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestCancelAfterElapseDoesNotUndoTrigger(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)
	ctx := context.Background()

	_, err := h.service.StartCountdown(ctx, h.userID, models.StartCountdownRequest{})
	require.NoError(t, err)
	h.clock.Advance(time.Duration(models.DefaultSOSCountdownSeconds) * time.Second)

	status, err := h.service.CancelCountdown(ctx, h.userID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStateActive, status.State)
	assert.Equal(t, 1, h.alerts.activeCount(h.userID))
}

func TestStartCountdownWhileRunningReturnsExisting(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)
	ctx := context.Background()

	_, err := h.service.StartCountdown(ctx, h.userID, models.StartCountdownRequest{})
	require.NoError(t, err)

	h.clock.Advance(4 * time.Second)
	status, err := h.service.StartCountdown(ctx, h.userID, models.StartCountdownRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.SOSStateCountdown, status.State)
	assert.Equal(t, models.DefaultSOSCountdownSeconds-4, status.CountdownLeft)

	// Only the original timer exists.
	h.clock.Advance(6 * time.Second)
	assert.Equal(t, 1, h.alerts.activeCount(h.userID))
	h.clock.Advance(time.Minute)
	assert.Equal(t, 1, len(h.alerts.alerts))
}

func TestCustomCountdownDuration(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)
	ctx := context.Background()

	userObjectID, _ := primitive.ObjectIDFromHex(h.userID)
	require.NoError(t, h.settings.SaveSafetySettings(ctx, &models.SafetySettings{
		UserID:              userObjectID,
		SOSCountdownSeconds: 30,
	}))

	status, err := h.service.StartCountdown(ctx, h.userID, models.StartCountdownRequest{})
	require.NoError(t, err)
	assert.Equal(t, 30, status.CountdownLeft)

	h.clock.Advance(29 * time.Second)
	assert.Empty(t, h.alerts.alerts)
	h.clock.Advance(time.Second)
	assert.Equal(t, 1, h.alerts.activeCount(h.userID))
}

func TestStartCountdownFailsWithoutContacts(t *testing.T) {
	h := newSOSHarness(noon())
	ctx := context.Background()

	_, err := h.service.StartCountdown(ctx, h.userID, models.StartCountdownRequest{})
	require.Error(t, err)
	assert.True(t, utils.IsPreconditionFailed(err))

	status, err := h.service.GetStatus(ctx, h.userID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStateIdle, status.State)
}

func TestTriggerFailsWithoutContacts(t *testing.T) {
	h := newSOSHarness(noon())
	ctx := context.Background()

	_, err := h.service.TriggerImmediate(ctx, h.userID, models.TriggerSOSRequest{})
	require.Error(t, err)
	assert.True(t, utils.IsPreconditionFailed(err))

	status, err := h.service.GetStatus(ctx, h.userID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStateIdle, status.State)
	assert.Empty(t, h.alerts.alerts)
}

func TestTriggerFailsWithoutLocation(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)
	h.location.err = utils.ErrLocationUnavailable

	_, err := h.service.TriggerImmediate(context.Background(), h.userID, models.TriggerSOSRequest{})
	require.Error(t, err)
	assert.True(t, utils.IsPreconditionFailed(err))
	assert.Empty(t, h.alerts.alerts)
}

func TestTriggerImmediateSupersedesCountdown(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)
	ctx := context.Background()

	_, err := h.service.StartCountdown(ctx, h.userID, models.StartCountdownRequest{})
	require.NoError(t, err)

	alert, err := h.service.TriggerImmediate(ctx, h.userID, models.TriggerSOSRequest{Message: "now"})
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusActive, alert.Status)

	// The abandoned countdown deadline passing creates no second alert.
	h.clock.Advance(time.Minute)
	assert.Equal(t, 1, len(h.alerts.alerts))
}

func TestSecondTriggerWhileActiveFails(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)
	ctx := context.Background()

	_, err := h.service.TriggerImmediate(ctx, h.userID, models.TriggerSOSRequest{})
	require.NoError(t, err)

	_, err = h.service.TriggerImmediate(ctx, h.userID, models.TriggerSOSRequest{})
	require.Error(t, err)
	assert.True(t, utils.IsPreconditionFailed(err))
	assert.Equal(t, 1, h.alerts.activeCount(h.userID))
}

func TestResolveTerminalizesAndKeepsHistory(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)
	ctx := context.Background()

	_, err := h.service.TriggerImmediate(ctx, h.userID, models.TriggerSOSRequest{})
	require.NoError(t, err)

	resolved, err := h.service.Resolve(ctx, h.userID, models.ResolveSOSRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	status, err := h.service.GetStatus(ctx, h.userID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStateIdle, status.State)

	history, err := h.service.GetHistory(ctx, h.userID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestResolveFalseAlarm(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)
	ctx := context.Background()

	_, err := h.service.TriggerImmediate(ctx, h.userID, models.TriggerSOSRequest{})
	require.NoError(t, err)

	resolved, err := h.service.Resolve(ctx, h.userID, models.ResolveSOSRequest{FalseAlarm: true})
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusFalseAlarm, resolved.Status)
	assert.Equal(t, 0, h.alerts.activeCount(h.userID))
}

func TestResolveWithoutActiveAlertFails(t *testing.T) {
	h := newSOSHarness(noon())

	_, err := h.service.Resolve(context.Background(), h.userID, models.ResolveSOSRequest{})
	require.Error(t, err)
	assert.True(t, utils.IsNotFound(err))
}

func TestTriggerAfterResolveStartsFreshAlert(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)
	ctx := context.Background()

	first, err := h.service.TriggerImmediate(ctx, h.userID, models.TriggerSOSRequest{})
	require.NoError(t, err)
	_, err = h.service.Resolve(ctx, h.userID, models.ResolveSOSRequest{})
	require.NoError(t, err)

	second, err := h.service.TriggerImmediate(ctx, h.userID, models.TriggerSOSRequest{})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, h.alerts.activeCount(h.userID))
}

func TestRehydrateRestoresActiveSession(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)
	ctx := context.Background()

	_, err := h.service.TriggerImmediate(ctx, h.userID, models.TriggerSOSRequest{})
	require.NoError(t, err)

	// A fresh service instance over the same store simulates a restart.
	notificationService := NewNotificationService(h.notifications, h.settings, nil, nil, h.clock)
	directory := NewContactService(h.contacts, h.clock)
	restarted := NewSOSService(h.alerts, h.settings, h.location, directory, h.dispatcher, notificationService, nil, h.clock)

	status, err := restarted.GetStatus(ctx, h.userID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStateActive, status.State)
	require.NotNil(t, status.Alert)

	resolved, err := restarted.Resolve(ctx, h.userID, models.ResolveSOSRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusResolved, resolved.Status)
}

func TestShutdownStopsCountdowns(t *testing.T) {
	h := newSOSHarness(noon())
	h.seedContact("Alice", true)

	_, err := h.service.StartCountdown(context.Background(), h.userID, models.StartCountdownRequest{})
	require.NoError(t, err)

	h.service.Shutdown()
	h.clock.Advance(time.Minute)
	assert.Empty(t, h.alerts.alerts)
}
