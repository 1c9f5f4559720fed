// models/checkin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckIn is an immutable, timestamped user assertion about their own
// safety. Records are append-only and read newest-first.
type CheckIn struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Status    string             `json:"status" bson:"status"`
	Message   string             `json:"message,omitempty" bson:"message,omitempty"`
	Location  LocationSnapshot   `json:"location" bson:"location"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

const (
	CheckInStatusSafe      = "safe"
	CheckInStatusNeedsHelp = "needs_help"
	CheckInStatusEmergency = "emergency"
)

// OverdueGraceFactor pads the expected check-in interval before a user is
// considered overdue, so clock jitter does not flap the state.
const OverdueGraceFactor = 1.5

type RecordCheckInRequest struct {
	Status   string           `json:"status" validate:"required,checkin_status"`
	Message  string           `json:"message,omitempty" validate:"max=500"`
	Location LocationSnapshot `json:"location,omitempty"`
}

type ScheduleCheckInRequest struct {
	IntervalMinutes int `json:"intervalMinutes" validate:"gte=0,lte=1440"`
}

// CheckInState is the live scheduler view. Overdue is derived from the
// last check-in and the configured interval at read time, never stored.
type CheckInState struct {
	LastCheckIn     *CheckIn  `json:"lastCheckIn,omitempty"`
	IntervalMinutes int       `json:"intervalMinutes"`
	NextDue         time.Time `json:"nextDue,omitempty"`
	Overdue         bool      `json:"overdue"`
}

// IsOverdue reports whether the grace-adjusted deadline for the next
// check-in has passed. A zero interval disables the expectation entirely.
func IsOverdue(last time.Time, intervalMinutes int, now time.Time) bool {
	if intervalMinutes <= 0 || last.IsZero() {
		return false
	}
	grace := time.Duration(float64(intervalMinutes)*OverdueGraceFactor) * time.Minute
	return now.After(last.Add(grace))
}
