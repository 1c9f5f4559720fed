// models/settings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SafetySettings controls the SOS countdown and the automatic check-in
// expectation. Changing AutoCheckInIntervalMinutes reschedules the
// outstanding check-in timer atomically.
type SafetySettings struct {
	ID                         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID                     primitive.ObjectID `json:"userId" bson:"userId"`
	SOSCountdownSeconds        int                `json:"sosCountdownSeconds" bson:"sosCountdownSeconds"`
	AutoCheckInIntervalMinutes int                `json:"autoCheckInIntervalMinutes" bson:"autoCheckInIntervalMinutes"`
	ShareLocationWithContacts  bool               `json:"shareLocationWithContacts" bson:"shareLocationWithContacts"`
	FemaleOnlyServices         bool               `json:"femaleOnlyServices" bson:"femaleOnlyServices"`
	UpdatedAt                  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

const DefaultSOSCountdownSeconds = 10

// DefaultSafetySettings returns the settings used before the user has
// saved any.
func DefaultSafetySettings(userID primitive.ObjectID) *SafetySettings {
	return &SafetySettings{
		UserID:                    userID,
		SOSCountdownSeconds:       DefaultSOSCountdownSeconds,
		ShareLocationWithContacts: true,
	}
}

type UpdateSafetySettingsRequest struct {
	SOSCountdownSeconds        *int  `json:"sosCountdownSeconds,omitempty" validate:"omitempty,gte=1,lte=300"`
	AutoCheckInIntervalMinutes *int  `json:"autoCheckInIntervalMinutes,omitempty" validate:"omitempty,gte=0,lte=1440"`
	ShareLocationWithContacts  *bool `json:"shareLocationWithContacts,omitempty"`
	FemaleOnlyServices         *bool `json:"femaleOnlyServices,omitempty"`
}

// QuietHours is a wall-clock window during which non-urgent notifications
// are suppressed. The window may wrap past midnight (start > end).
type QuietHours struct {
	Enabled   bool   `json:"enabled" bson:"enabled"`
	StartTime string `json:"startTime" bson:"startTime"` // HH:MM
	EndTime   string `json:"endTime" bson:"endTime"`     // HH:MM
}

// NotificationSettings gates what the router admits and which delivery
// intents it raises.
type NotificationSettings struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"userId"`
	PushEnabled  bool               `json:"pushEnabled" bson:"pushEnabled"`
	EmailEnabled bool               `json:"emailEnabled" bson:"emailEnabled"`
	SMSEnabled   bool               `json:"smsEnabled" bson:"smsEnabled"`
	SoundEnabled bool               `json:"soundEnabled" bson:"soundEnabled"`
	Categories   map[string]bool    `json:"categories" bson:"categories"`
	QuietHours   QuietHours         `json:"quietHours" bson:"quietHours"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// DefaultNotificationSettings enables every category with push and sound
// on, quiet hours off.
func DefaultNotificationSettings(userID primitive.ObjectID) *NotificationSettings {
	categories := make(map[string]bool, len(NotificationCategories))
	for _, c := range NotificationCategories {
		categories[c] = true
	}
	return &NotificationSettings{
		UserID:       userID,
		PushEnabled:  true,
		SoundEnabled: true,
		Categories:   categories,
		QuietHours:   QuietHours{StartTime: "22:00", EndTime: "08:00"},
	}
}

// CategoryEnabled treats categories missing from the map as enabled, so
// newly introduced categories are not silently dropped for old settings.
func (ns *NotificationSettings) CategoryEnabled(category string) bool {
	if ns.Categories == nil {
		return true
	}
	enabled, ok := ns.Categories[category]
	if !ok {
		return true
	}
	return enabled
}

type UpdateNotificationSettingsRequest struct {
	PushEnabled  *bool           `json:"pushEnabled,omitempty"`
	EmailEnabled *bool           `json:"emailEnabled,omitempty"`
	SMSEnabled   *bool           `json:"smsEnabled,omitempty"`
	SoundEnabled *bool           `json:"soundEnabled,omitempty"`
	Categories   map[string]bool `json:"categories,omitempty"`
	QuietHours   *QuietHours     `json:"quietHours,omitempty"`
}
