package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safetrip/interfaces"
	"safetrip/models"
	"safetrip/utils"
)

// NotificationService is the routing and gating engine. Every candidate
// notification in the system goes through Submit; the service decides
// admission against the user's settings, persists what it admits, and
// raises delivery intents toward the presentation layer.
type NotificationService struct {
	notificationStore interfaces.NotificationStore
	settingsStore     interfaces.SettingsStore
	presenter         interfaces.Presenter
	pushDeliverer     interfaces.PushDeliverer
	clock             utils.Clock
	validator         *utils.ValidationService
}

func NewNotificationService(
	notificationStore interfaces.NotificationStore,
	settingsStore interfaces.SettingsStore,
	presenter interfaces.Presenter,
	pushDeliverer interfaces.PushDeliverer,
	clock utils.Clock,
) *NotificationService {
	return &NotificationService{
		notificationStore: notificationStore,
		settingsStore:     settingsStore,
		presenter:         presenter,
		pushDeliverer:     pushDeliverer,
		clock:             clock,
		validator:         utils.NewValidationService(),
	}
}

// Submit runs the admission pipeline for one candidate. A (nil, nil)
// return means the draft was filtered by the user's settings, which is
// the intended outcome and not an error. Category-disable wins over
// every priority, urgent included; quiet hours yield to urgent only.
func (ns *NotificationService) Submit(ctx context.Context, userID string, draft models.NotificationDraft) (*models.Notification, error) {
	if validationErrors := ns.validator.ValidateStruct(draft); len(validationErrors) > 0 {
		return nil, utils.NewBadRequestError("Invalid notification draft")
	}

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.NewBadRequestError("Invalid user ID")
	}

	settings, err := ns.settingsStore.GetNotificationSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !settings.CategoryEnabled(draft.Category) {
		logrus.WithFields(logrus.Fields{
			"userId":   userID,
			"category": draft.Category,
		}).Debug("Notification dropped: category disabled")
		return nil, nil
	}

	if draft.Priority != models.PriorityUrgent && ns.inQuietHours(settings) {
		logrus.WithFields(logrus.Fields{
			"userId":   userID,
			"category": draft.Category,
			"priority": draft.Priority,
		}).Debug("Notification dropped: quiet hours")
		return nil, nil
	}

	notification := &models.Notification{
		UserID:    userObjectID,
		Category:  draft.Category,
		Priority:  draft.Priority,
		Title:     draft.Title,
		Message:   draft.Message,
		ActionRef: draft.ActionRef,
		Metadata:  draft.Metadata,
		CreatedAt: ns.clock.Now(),
	}

	if err := ns.notificationStore.Create(ctx, notification); err != nil {
		return nil, err
	}

	ns.raiseDeliveryIntents(ctx, userID, settings, notification)

	return notification, nil
}

// raiseDeliveryIntents fans the admitted notification out to the
// presentation collaborators. These are side-effect requests; their
// failure never affects the stored record.
func (ns *NotificationService) raiseDeliveryIntents(ctx context.Context, userID string, settings *models.NotificationSettings, notification *models.Notification) {
	if ns.presenter != nil {
		ns.presenter.NotificationDelivered(userID, *notification)
		if settings.SoundEnabled {
			ns.presenter.SoundCue(userID, notification.Category)
		}
	}

	if settings.PushEnabled && ns.pushDeliverer != nil {
		go func(n models.Notification) {
			if err := ns.pushDeliverer.DeliverPush(context.Background(), userID, n); err != nil {
				logrus.WithField("userId", userID).Warn("Push delivery failed: ", err)
			}
		}(*notification)
	}
}

// inQuietHours tests the current wall-clock minute against the window,
// handling windows that wrap past midnight.
func (ns *NotificationService) inQuietHours(settings *models.NotificationSettings) bool {
	qh := settings.QuietHours
	if !qh.Enabled {
		return false
	}

	start, err := utils.ParseWallClock(qh.StartTime)
	if err != nil {
		return false
	}
	end, err := utils.ParseWallClock(qh.EndTime)
	if err != nil {
		return false
	}

	return InQuietWindow(start, end, utils.MinutesOfDay(ns.clock.Now()))
}

// InQuietWindow reports whether now (minutes of day) falls in [start,
// end). A window with start > end wraps past midnight.
func InQuietWindow(start, end, now int) bool {
	if start == end {
		return false
	}
	if start < end {
		return now >= start && now < end
	}
	return now >= start || now < end
}

func (ns *NotificationService) GetNotifications(ctx context.Context, req models.GetNotificationsRequest) ([]models.Notification, int64, error) {
	return ns.notificationStore.GetUserNotifications(ctx, req)
}

func (ns *NotificationService) GetByCategory(ctx context.Context, userID, category string) ([]models.Notification, error) {
	return ns.notificationStore.GetByCategory(ctx, userID, category)
}

// MarkRead is idempotent: marking an unknown id is a no-op.
func (ns *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := ns.checkOwnership(ctx, userID, notificationID); err != nil {
		if utils.IsNotFound(err) {
			return nil
		}
		return err
	}
	return ns.notificationStore.MarkAsRead(ctx, notificationID)
}

func (ns *NotificationService) MarkUnread(ctx context.Context, userID, notificationID string) error {
	if err := ns.checkOwnership(ctx, userID, notificationID); err != nil {
		if utils.IsNotFound(err) {
			return nil
		}
		return err
	}
	return ns.notificationStore.MarkAsUnread(ctx, notificationID)
}

func (ns *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return ns.notificationStore.MarkAllAsRead(ctx, userID)
}

// Remove mirrors idempotent UI-driven deletes: removing an unknown or
// already-removed id succeeds silently.
func (ns *NotificationService) Remove(ctx context.Context, userID, notificationID string) error {
	if err := ns.checkOwnership(ctx, userID, notificationID); err != nil {
		if utils.IsNotFound(err) {
			return nil
		}
		return err
	}

	err := ns.notificationStore.Delete(ctx, notificationID)
	if err != nil && utils.IsNotFound(err) {
		return nil
	}
	return err
}

func (ns *NotificationService) ClearAll(ctx context.Context, userID string) error {
	return ns.notificationStore.DeleteAll(ctx, userID)
}

func (ns *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return ns.notificationStore.UnreadCount(ctx, userID)
}

func (ns *NotificationService) checkOwnership(ctx context.Context, userID, notificationID string) error {
	notification, err := ns.notificationStore.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID.Hex() != userID {
		return utils.NewForbiddenError("Access denied")
	}
	return nil
}

// CleanupOld removes notifications older than the retention window.
func (ns *NotificationService) CleanupOld(ctx context.Context, retentionDays int) error {
	deleted, err := ns.notificationStore.DeleteOlderThan(ctx, retentionDays)
	if err != nil {
		return err
	}

	if deleted > 0 {
		logrus.Info("Cleaned up ", deleted, " old notifications")
	}
	return nil
}
