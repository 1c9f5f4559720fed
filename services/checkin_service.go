package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safetrip/interfaces"
	"safetrip/models"
	"safetrip/utils"
)

// checkInSlot is the single armed timer a user may hold. The generation
// counter fences stale timer callbacks: a callback only fires its
// notification when its generation still matches the slot's.
type checkInSlot struct {
	generation uint64
	handle     utils.TimerHandle
	deadline   time.Time
}

// CheckInService records check-ins and runs the overdue watchdog. Each
// scheduled user holds at most one armed timer; recording a check-in or
// changing the interval rearms it.
type CheckInService struct {
	checkInStore  interfaces.CheckInStore
	settingsStore interfaces.SettingsStore
	location      interfaces.LocationProvider
	notifications *NotificationService
	clock         utils.Clock
	validator     *utils.ValidationService

	mu    sync.Mutex
	slots map[string]*checkInSlot
}

func NewCheckInService(
	checkInStore interfaces.CheckInStore,
	settingsStore interfaces.SettingsStore,
	location interfaces.LocationProvider,
	notifications *NotificationService,
	clock utils.Clock,
) *CheckInService {
	return &CheckInService{
		checkInStore:  checkInStore,
		settingsStore: settingsStore,
		location:      location,
		notifications: notifications,
		clock:         clock,
		validator:     utils.NewValidationService(),
		slots:         make(map[string]*checkInSlot),
	}
}

// RecordCheckIn persists an immutable check-in and, when an automatic
// interval is configured, rearms the watchdog from this check-in's time.
func (cs *CheckInService) RecordCheckIn(ctx context.Context, userID string, req models.RecordCheckInRequest) (*models.CheckIn, error) {
	if validationErrors := cs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewBadRequestError("Invalid check-in data")
	}

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.NewBadRequestError("Invalid user ID")
	}

	location := req.Location
	if location.IsZero() {
		fix, err := cs.location.CurrentLocation(ctx, userID)
		if err != nil {
			return nil, utils.NewPreconditionFailedError("Current location is unavailable")
		}
		location = *fix
	}

	checkIn := &models.CheckIn{
		UserID:    userObjectID,
		Status:    req.Status,
		Message:   req.Message,
		Location:  location,
		Timestamp: cs.clock.Now(),
	}

	if err := cs.checkInStore.Create(ctx, checkIn); err != nil {
		return nil, err
	}

	settings, err := cs.settingsStore.GetSafetySettings(ctx, userID)
	if err != nil {
		logrus.WithField("userId", userID).Warn("Failed to load safety settings after check-in: ", err)
	} else if settings.AutoCheckInIntervalMinutes > 0 {
		cs.armTimer(userID, settings.AutoCheckInIntervalMinutes)
	}

	if checkIn.Status == models.CheckInStatusNeedsHelp || checkIn.Status == models.CheckInStatusEmergency {
		cs.notifyDistressCheckIn(userID, checkIn)
	}

	return checkIn, nil
}

// ScheduleAuto sets the automatic check-in interval. Zero disables the
// watchdog and disarms any pending timer.
func (cs *CheckInService) ScheduleAuto(ctx context.Context, userID string, req models.ScheduleCheckInRequest) (*models.SafetySettings, error) {
	if validationErrors := cs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewSettingsInvalidError("Interval must be between 0 and 1440 minutes")
	}

	settings, err := cs.settingsStore.GetSafetySettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings.AutoCheckInIntervalMinutes = req.IntervalMinutes
	if err := cs.settingsStore.SaveSafetySettings(ctx, settings); err != nil {
		return nil, err
	}

	if req.IntervalMinutes == 0 {
		cs.disarmTimer(userID)
	} else {
		cs.armTimer(userID, req.IntervalMinutes)
	}

	return settings, nil
}

// CancelAuto disables the automatic check-in expectation. Cancelling
// when nothing is scheduled is a no-op.
func (cs *CheckInService) CancelAuto(ctx context.Context, userID string) error {
	_, err := cs.ScheduleAuto(ctx, userID, models.ScheduleCheckInRequest{IntervalMinutes: 0})
	return err
}

// ApplyInterval arms or disarms the watchdog for an interval that was
// already persisted elsewhere, such as a safety settings update.
func (cs *CheckInService) ApplyInterval(userID string, intervalMinutes int) {
	if intervalMinutes <= 0 {
		cs.disarmTimer(userID)
		return
	}
	cs.armTimer(userID, intervalMinutes)
}

// GetState returns the live scheduler view for a user. Overdue is
// computed at read time from the latest check-in.
func (cs *CheckInService) GetState(ctx context.Context, userID string) (*models.CheckInState, error) {
	settings, err := cs.settingsStore.GetSafetySettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	state := &models.CheckInState{
		IntervalMinutes: settings.AutoCheckInIntervalMinutes,
	}

	last, err := cs.checkInStore.GetLatest(ctx, userID)
	if err != nil {
		if utils.IsNotFound(err) {
			return state, nil
		}
		return nil, err
	}

	state.LastCheckIn = last
	if settings.AutoCheckInIntervalMinutes > 0 {
		state.NextDue = last.Timestamp.Add(time.Duration(settings.AutoCheckInIntervalMinutes) * time.Minute)
		state.Overdue = models.IsOverdue(last.Timestamp, settings.AutoCheckInIntervalMinutes, cs.clock.Now())
	}

	return state, nil
}

func (cs *CheckInService) GetHistory(ctx context.Context, userID string, limit int) ([]models.CheckIn, error) {
	return cs.checkInStore.GetUserCheckIns(ctx, userID, limit)
}

// RearmFromStore rearms the watchdog for one user from persisted state,
// used on startup so scheduled users survive a restart. If the user is
// already past the grace deadline the overdue notification fires now.
func (cs *CheckInService) RearmFromStore(ctx context.Context, userID string) error {
	settings, err := cs.settingsStore.GetSafetySettings(ctx, userID)
	if err != nil {
		return err
	}
	if settings.AutoCheckInIntervalMinutes <= 0 {
		return nil
	}

	last, err := cs.checkInStore.GetLatest(ctx, userID)
	if err != nil {
		if utils.IsNotFound(err) {
			cs.armTimer(userID, settings.AutoCheckInIntervalMinutes)
			return nil
		}
		return err
	}

	grace := time.Duration(float64(settings.AutoCheckInIntervalMinutes)*models.OverdueGraceFactor) * time.Minute
	deadline := last.Timestamp.Add(grace)
	if !deadline.After(cs.clock.Now()) {
		cs.fireOverdue(userID, 0)
		return nil
	}

	cs.armDeadline(userID, deadline)
	return nil
}

// armTimer arms (or rearms) the user's watchdog to fire one grace
// interval from now. Any previously armed timer is superseded.
func (cs *CheckInService) armTimer(userID string, intervalMinutes int) {
	grace := time.Duration(float64(intervalMinutes)*models.OverdueGraceFactor) * time.Minute
	cs.armDeadline(userID, cs.clock.Now().Add(grace))
}

func (cs *CheckInService) armDeadline(userID string, deadline time.Time) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	slot := cs.slots[userID]
	if slot == nil {
		slot = &checkInSlot{}
		cs.slots[userID] = slot
	} else if slot.handle != nil {
		slot.handle.Stop()
	}

	slot.generation++
	gen := slot.generation
	slot.deadline = deadline
	slot.handle = cs.clock.At(deadline, func() {
		cs.fireOverdue(userID, gen)
	})
}

func (cs *CheckInService) disarmTimer(userID string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	slot := cs.slots[userID]
	if slot == nil {
		return
	}
	if slot.handle != nil {
		slot.handle.Stop()
	}
	slot.generation++
	delete(cs.slots, userID)
}

// fireOverdue delivers the missed check-in notification if the firing
// timer is still current. A generation mismatch means the slot was
// rearmed or disarmed after this timer was scheduled. Generation zero
// bypasses the fence for direct startup invocation.
func (cs *CheckInService) fireOverdue(userID string, gen uint64) {
	if gen != 0 {
		cs.mu.Lock()
		slot := cs.slots[userID]
		stale := slot == nil || slot.generation != gen
		cs.mu.Unlock()
		if stale {
			return
		}
	}

	logrus.WithField("userId", userID).Info("Check-in overdue, notifying")

	_, err := cs.notifications.Submit(context.Background(), userID, models.NotificationDraft{
		Category: models.CategorySafety,
		Priority: models.PriorityMedium,
		Title:    "Missed check-in",
		Message:  "You missed your scheduled check-in. Are you okay?",
	})
	if err != nil {
		logrus.WithField("userId", userID).Error("Failed to submit overdue notification: ", err)
	}
}

func (cs *CheckInService) notifyDistressCheckIn(userID string, checkIn *models.CheckIn) {
	title := "Check-in needs attention"
	priority := models.PriorityHigh
	if checkIn.Status == models.CheckInStatusEmergency {
		// Urgent so the router admits it through quiet hours.
		title = "Emergency check-in"
		priority = models.PriorityUrgent
	}

	message := fmt.Sprintf("Check-in reported status %q", checkIn.Status)
	if checkIn.Message != "" {
		message = fmt.Sprintf("%s: %s", message, utils.TruncateString(checkIn.Message, 200))
	}

	go func() {
		_, err := cs.notifications.Submit(context.Background(), userID, models.NotificationDraft{
			Category: models.CategorySafety,
			Priority: priority,
			Title:    title,
			Message:  message,
		})
		if err != nil {
			logrus.WithField("userId", userID).Error("Failed to submit distress notification: ", err)
		}
	}()
}

// Shutdown disarms every pending watchdog timer.
func (cs *CheckInService) Shutdown() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for userID, slot := range cs.slots {
		if slot.handle != nil {
			slot.handle.Stop()
		}
		slot.generation++
		delete(cs.slots, userID)
	}
}
