package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safetrip/interfaces"
	"safetrip/models"
	"safetrip/utils"
)

// sosSession is the in-memory per-user state machine record. The
// generation counter fences countdown callbacks the same way the
// check-in slots do; a fired callback whose generation no longer
// matches was cancelled or superseded and must not trigger.
type sosSession struct {
	state           string
	generation      uint64
	countdownEnd    time.Time
	countdownHandle utils.TimerHandle
	pendingMessage  string
	pendingLocation models.LocationSnapshot
	alert           *models.SOSAlert
	hydrated        bool
}

// SOSService owns the Idle -> Countdown -> Active -> terminal state
// machine. Session state lives in memory; the Active leg is also
// persisted, so sessions are rehydrated lazily from the alert store
// after a restart.
type SOSService struct {
	alertStore    interfaces.SOSAlertStore
	settingsStore interfaces.SettingsStore
	location      interfaces.LocationProvider
	contacts      interfaces.ContactDirectory
	dispatcher    interfaces.AlertDispatcher
	notifications *NotificationService
	broadcaster   interfaces.SOSBroadcaster
	clock         utils.Clock
	validator     *utils.ValidationService

	mu       sync.Mutex
	sessions map[string]*sosSession
}

func NewSOSService(
	alertStore interfaces.SOSAlertStore,
	settingsStore interfaces.SettingsStore,
	location interfaces.LocationProvider,
	contacts interfaces.ContactDirectory,
	dispatcher interfaces.AlertDispatcher,
	notifications *NotificationService,
	broadcaster interfaces.SOSBroadcaster,
	clock utils.Clock,
) *SOSService {
	return &SOSService{
		alertStore:    alertStore,
		settingsStore: settingsStore,
		location:      location,
		contacts:      contacts,
		dispatcher:    dispatcher,
		notifications: notifications,
		broadcaster:   broadcaster,
		clock:         clock,
		validator:     utils.NewValidationService(),
		sessions:      make(map[string]*sosSession),
	}
}

// StartCountdown verifies the trigger preconditions, then arms the
// countdown timer. Preconditions failing leave the session untouched.
// Starting while a countdown is already running returns the running
// countdown unchanged.
func (ss *SOSService) StartCountdown(ctx context.Context, userID string, req models.StartCountdownRequest) (*models.SOSStatus, error) {
	if validationErrors := ss.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewBadRequestError("Invalid countdown request")
	}

	location, _, err := ss.checkPreconditions(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings, err := ss.settingsStore.GetSafetySettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	countdownSeconds := settings.SOSCountdownSeconds
	if countdownSeconds <= 0 {
		countdownSeconds = models.DefaultSOSCountdownSeconds
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	session, err := ss.sessionLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch session.state {
	case models.SOSStateActive:
		return nil, utils.NewPreconditionFailedError("An SOS alert is already active")
	case models.SOSStateCountdown:
		return ss.statusLocked(session), nil
	}

	session.generation++
	gen := session.generation
	session.state = models.SOSStateCountdown
	session.pendingMessage = req.Message
	session.pendingLocation = *location
	session.countdownEnd = ss.clock.Now().Add(time.Duration(countdownSeconds) * time.Second)
	session.countdownHandle = ss.clock.AfterFunc(time.Duration(countdownSeconds)*time.Second, func() {
		ss.countdownElapsed(userID, gen)
	})

	logrus.WithFields(logrus.Fields{
		"userId":  userID,
		"seconds": countdownSeconds,
	}).Info("SOS countdown started")

	return ss.statusLocked(session), nil
}

// CancelCountdown stops a running countdown and returns the session to
// idle. Cancelling when no countdown is running, including after the
// timer has already fired, is a no-op.
func (ss *SOSService) CancelCountdown(ctx context.Context, userID string) (*models.SOSStatus, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	session, err := ss.sessionLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	if session.state == models.SOSStateCountdown && session.countdownHandle != nil {
		if session.countdownHandle.Stop() {
			session.generation++
			session.state = models.SOSStateIdle
			session.countdownHandle = nil
			session.pendingMessage = ""
			session.pendingLocation = models.LocationSnapshot{}
			logrus.WithField("userId", userID).Info("SOS countdown cancelled")
		}
		// Stop returning false means the callback already started; the
		// trigger wins and this cancel is a no-op.
	}

	return ss.statusLocked(session), nil
}

// TriggerImmediate skips the countdown and activates an alert now. A
// running countdown for the same user is superseded.
func (ss *SOSService) TriggerImmediate(ctx context.Context, userID string, req models.TriggerSOSRequest) (*models.SOSAlert, error) {
	if validationErrors := ss.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewBadRequestError("Invalid trigger request")
	}

	location, contactList, err := ss.checkPreconditions(ctx, userID)
	if err != nil {
		return nil, err
	}

	ss.mu.Lock()
	session, err := ss.sessionLocked(ctx, userID)
	if err != nil {
		ss.mu.Unlock()
		return nil, err
	}

	if session.state == models.SOSStateActive {
		ss.mu.Unlock()
		return nil, utils.NewPreconditionFailedError("An SOS alert is already active")
	}

	if session.state == models.SOSStateCountdown && session.countdownHandle != nil {
		session.countdownHandle.Stop()
		session.countdownHandle = nil
	}
	session.generation++
	session.state = models.SOSStateActive
	ss.mu.Unlock()

	alert, err := ss.activate(ctx, userID, req.Message, *location, contactList)
	if err != nil {
		ss.mu.Lock()
		session.state = models.SOSStateIdle
		ss.mu.Unlock()
		return nil, err
	}

	ss.mu.Lock()
	session.alert = alert
	ss.mu.Unlock()

	return alert, nil
}

// Resolve terminalizes the active alert as resolved or false alarm and
// returns the session to idle. The alert record is kept for history.
func (ss *SOSService) Resolve(ctx context.Context, userID string, req models.ResolveSOSRequest) (*models.SOSAlert, error) {
	if validationErrors := ss.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewBadRequestError("Invalid resolve request")
	}

	ss.mu.Lock()
	session, err := ss.sessionLocked(ctx, userID)
	if err != nil {
		ss.mu.Unlock()
		return nil, err
	}

	if session.state != models.SOSStateActive || session.alert == nil {
		ss.mu.Unlock()
		return nil, utils.ErrAlertNotFound
	}

	alert := session.alert
	ss.mu.Unlock()

	status := models.SOSStatusResolved
	if req.FalseAlarm {
		status = models.SOSStatusFalseAlarm
	}

	if err := ss.alertStore.UpdateStatus(ctx, alert.ID.Hex(), status); err != nil {
		return nil, err
	}

	ss.mu.Lock()
	session.state = models.SOSStateIdle
	session.alert = nil
	ss.mu.Unlock()

	now := ss.clock.Now()
	alert.Status = status
	alert.UpdatedAt = now
	alert.ResolvedAt = &now

	logrus.WithFields(logrus.Fields{
		"userId":  userID,
		"alertId": alert.ID.Hex(),
		"status":  status,
	}).Info("SOS alert resolved")

	title := "SOS resolved"
	message := "Your SOS alert has been resolved."
	if req.FalseAlarm {
		title = "SOS marked as false alarm"
		message = "Your SOS alert was marked as a false alarm."
	}
	go func() {
		_, err := ss.notifications.Submit(context.Background(), userID, models.NotificationDraft{
			Category:  models.CategorySafety,
			Priority:  models.PriorityMedium,
			Title:     title,
			Message:   message,
			ActionRef: alert.ID.Hex(),
		})
		if err != nil {
			logrus.WithField("userId", userID).Warn("Failed to submit resolve notification: ", err)
		}
	}()

	if ss.broadcaster != nil {
		ss.broadcaster.SendSOSAlert(userID, *alert)
	}

	return alert, nil
}

// GetStatus reports the live session view, including seconds remaining
// during a countdown.
func (ss *SOSService) GetStatus(ctx context.Context, userID string) (*models.SOSStatus, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	session, err := ss.sessionLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ss.statusLocked(session), nil
}

func (ss *SOSService) GetHistory(ctx context.Context, userID string, limit int) ([]models.SOSAlert, error) {
	return ss.alertStore.GetUserAlerts(ctx, userID, limit)
}

// Rehydrate loads any persisted Active alert into the in-memory session,
// used by the startup worker and lazily on first access.
func (ss *SOSService) Rehydrate(ctx context.Context, userID string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	_, err := ss.sessionLocked(ctx, userID)
	return err
}

// Shutdown stops every pending countdown timer without triggering.
func (ss *SOSService) Shutdown() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	for _, session := range ss.sessions {
		if session.countdownHandle != nil {
			session.countdownHandle.Stop()
			session.countdownHandle = nil
		}
		session.generation++
	}
}

// countdownElapsed is the timer callback. The generation fence decides
// the tick-versus-cancel race: whichever side moves the session first
// wins, and a fired trigger is never undone by a late cancel.
func (ss *SOSService) countdownElapsed(userID string, gen uint64) {
	ss.mu.Lock()
	session := ss.sessions[userID]
	if session == nil || session.generation != gen || session.state != models.SOSStateCountdown {
		ss.mu.Unlock()
		return
	}

	session.generation++
	session.state = models.SOSStateActive
	session.countdownHandle = nil
	message := session.pendingMessage
	location := session.pendingLocation
	session.pendingMessage = ""
	session.pendingLocation = models.LocationSnapshot{}
	ss.mu.Unlock()

	ctx := context.Background()

	contactList, err := ss.contacts.PrimaryAndSecondaryContacts(ctx, userID)
	if err != nil || len(contactList) == 0 {
		logrus.WithField("userId", userID).Error("Countdown elapsed but contacts unavailable, aborting trigger")
		ss.mu.Lock()
		session.state = models.SOSStateIdle
		ss.mu.Unlock()
		return
	}

	// Prefer a fresh fix; fall back to the one captured at countdown start.
	if fix, locErr := ss.location.CurrentLocation(ctx, userID); locErr == nil {
		location = *fix
	}

	alert, err := ss.activate(ctx, userID, message, location, contactList)
	if err != nil {
		logrus.WithField("userId", userID).Error("Failed to activate SOS after countdown: ", err)
		ss.mu.Lock()
		session.state = models.SOSStateIdle
		ss.mu.Unlock()
		return
	}

	ss.mu.Lock()
	session.alert = alert
	ss.mu.Unlock()
}

// activate persists the alert and fans out the notification, contact
// dispatches and live broadcast. Fan-out failures are logged only.
func (ss *SOSService) activate(ctx context.Context, userID, message string, location models.LocationSnapshot, contactList []models.EmergencyContact) (*models.SOSAlert, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.NewBadRequestError("Invalid user ID")
	}

	now := ss.clock.Now()
	alert := &models.SOSAlert{
		UserID:    userObjectID,
		Status:    models.SOSStatusActive,
		Message:   message,
		Location:  location,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ss.alertStore.Create(ctx, alert); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"userId":   userID,
		"alertId":  alert.ID.Hex(),
		"contacts": len(contactList),
	}).Warn("SOS alert activated")

	go func() {
		_, err := ss.notifications.Submit(context.Background(), userID, models.NotificationDraft{
			Category:  models.CategorySafety,
			Priority:  models.PriorityUrgent,
			Title:     "SOS alert active",
			Message:   "Your SOS alert is active and your emergency contacts are being notified.",
			ActionRef: alert.ID.Hex(),
		})
		if err != nil {
			logrus.WithField("userId", userID).Warn("Failed to submit SOS notification: ", err)
		}
	}()

	for _, contact := range contactList {
		go func(contact models.EmergencyContact) {
			req := models.AlertDispatchRequest{
				ID:        uuid.New().String(),
				Contact:   contact,
				Alert:     *alert,
				CreatedAt: now,
			}
			if err := ss.dispatcher.Dispatch(context.Background(), req); err != nil {
				logrus.WithFields(logrus.Fields{
					"userId":    userID,
					"contactId": contact.ID.Hex(),
				}).Warn("SOS dispatch failed: ", err)
			}
		}(contact)
	}

	if ss.broadcaster != nil {
		ss.broadcaster.SendSOSAlert(userID, *alert)
	}

	return alert, nil
}

// checkPreconditions verifies a current location fix and at least one
// emergency contact. Both must hold before any state transition.
func (ss *SOSService) checkPreconditions(ctx context.Context, userID string) (*models.LocationSnapshot, []models.EmergencyContact, error) {
	location, err := ss.location.CurrentLocation(ctx, userID)
	if err != nil {
		return nil, nil, utils.NewPreconditionFailedError("Current location is unavailable")
	}

	contactList, err := ss.contacts.PrimaryAndSecondaryContacts(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(contactList) == 0 {
		return nil, nil, utils.NewPreconditionFailedError("No emergency contacts configured")
	}

	return location, contactList, nil
}

// sessionLocked returns the user's session, hydrating Active state from
// the alert store on first access. Caller holds ss.mu.
func (ss *SOSService) sessionLocked(ctx context.Context, userID string) (*sosSession, error) {
	session := ss.sessions[userID]
	if session == nil {
		session = &sosSession{state: models.SOSStateIdle}
		ss.sessions[userID] = session
	}
	if session.hydrated {
		return session, nil
	}

	active, err := ss.alertStore.GetActiveByUser(ctx, userID)
	if err != nil {
		if !utils.IsNotFound(err) {
			return nil, err
		}
	} else if active != nil {
		session.state = models.SOSStateActive
		session.alert = active
	}

	session.hydrated = true
	return session, nil
}

func (ss *SOSService) statusLocked(session *sosSession) *models.SOSStatus {
	status := &models.SOSStatus{State: session.state}

	switch session.state {
	case models.SOSStateCountdown:
		remaining := session.countdownEnd.Sub(ss.clock.Now())
		if remaining < 0 {
			remaining = 0
		}
		status.CountdownLeft = int((remaining + time.Second - 1) / time.Second)
		status.Location = session.pendingLocation
	case models.SOSStateActive:
		status.Alert = session.alert
		if session.alert != nil {
			status.Location = session.alert.Location
		}
	}

	return status
}
