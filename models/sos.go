// models/sos.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SOSAlert is the durable record of a declared emergency. Alerts are never
// deleted; resolving or marking a false alarm terminalizes the record and
// keeps it for history.
type SOSAlert struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`
	Status     string             `json:"status" bson:"status"`
	Message    string             `json:"message,omitempty" bson:"message,omitempty"`
	Location   LocationSnapshot   `json:"location" bson:"location"`
	Responders []string           `json:"responders,omitempty" bson:"responders,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
	ResolvedAt *time.Time         `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
}

// SOS alert status constants. Active is the only non-terminal status and
// at most one Active alert exists per user.
const (
	SOSStatusActive     = "active"
	SOSStatusResolved   = "resolved"
	SOSStatusFalseAlarm = "false_alarm"
)

// SOS session state tags for the in-memory state machine.
const (
	SOSStateIdle      = "idle"
	SOSStateCountdown = "countdown"
	SOSStateActive    = "active"
)

type StartCountdownRequest struct {
	Message string `json:"message,omitempty" validate:"max=500"`
}

type TriggerSOSRequest struct {
	Message string `json:"message,omitempty" validate:"max=500"`
}

type ResolveSOSRequest struct {
	FalseAlarm bool   `json:"falseAlarm"`
	Resolution string `json:"resolution,omitempty" validate:"max=500"`
}

// SOSStatus is the live view returned to the caller: which state the
// session is in and, during a countdown, how many seconds remain.
type SOSStatus struct {
	State         string           `json:"state"`
	CountdownLeft int              `json:"countdownLeft,omitempty"`
	Alert         *SOSAlert        `json:"alert,omitempty"`
	Location      LocationSnapshot `json:"location,omitempty"`
}

// AlertDispatchRequest is the fan-out intent emitted once per emergency
// contact when an alert becomes active. Delivery is an external concern;
// the core only records that the intent was raised.
type AlertDispatchRequest struct {
	ID        string           `json:"id"`
	Contact   EmergencyContact `json:"contact"`
	Alert     SOSAlert         `json:"alert"`
	CreatedAt time.Time        `json:"createdAt"`
}
