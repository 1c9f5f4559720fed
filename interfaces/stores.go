package interfaces

import (
	"context"

	"safetrip/models"
)

// Persistence ports implemented by the Mongo repositories. Services
// depend on these so the routing and scheduling logic is testable
// without a database.

type SOSAlertStore interface {
	Create(ctx context.Context, alert *models.SOSAlert) error
	GetByID(ctx context.Context, id string) (*models.SOSAlert, error)
	GetActiveByUser(ctx context.Context, userID string) (*models.SOSAlert, error)
	UpdateStatus(ctx context.Context, id, status string) error
	GetUserAlerts(ctx context.Context, userID string, limit int) ([]models.SOSAlert, error)
}

type CheckInStore interface {
	Create(ctx context.Context, checkIn *models.CheckIn) error
	GetLatest(ctx context.Context, userID string) (*models.CheckIn, error)
	GetUserCheckIns(ctx context.Context, userID string, limit int) ([]models.CheckIn, error)
}

type ContactStore interface {
	Create(ctx context.Context, contact *models.EmergencyContact) error
	GetByID(ctx context.Context, id string) (*models.EmergencyContact, error)
	GetUserContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error)
	Update(ctx context.Context, contact *models.EmergencyContact) error
	Delete(ctx context.Context, id string) error
	// SetPrimary promotes one contact and demotes any other primary for
	// the same user in a single repository operation.
	SetPrimary(ctx context.Context, userID, contactID string) error
}

type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	GetUserNotifications(ctx context.Context, req models.GetNotificationsRequest) ([]models.Notification, int64, error)
	GetByCategory(ctx context.Context, userID, category string) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAsUnread(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

type SettingsStore interface {
	GetSafetySettings(ctx context.Context, userID string) (*models.SafetySettings, error)
	SaveSafetySettings(ctx context.Context, settings *models.SafetySettings) error
	GetNotificationSettings(ctx context.Context, userID string) (*models.NotificationSettings, error)
	SaveNotificationSettings(ctx context.Context, settings *models.NotificationSettings) error
	// ListAutoCheckInUsers returns every user with a non-zero auto
	// check-in interval, used to re-arm timers after a restart.
	ListAutoCheckInUsers(ctx context.Context) ([]models.SafetySettings, error)
}
