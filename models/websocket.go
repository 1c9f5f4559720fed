// models/websocket.go
package models

import "time"

// WebSocket frame types pushed to the presentation layer. The core does
// not know how these render; connected clients decide.
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	UserID    string      `json:"userId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	WSTypeNotification = "notification"
	WSTypeSoundCue     = "sound_cue"
	WSTypeSOSAlert     = "sos_alert"
	WSTypeCheckIn      = "checkin"
)

// WSNotification mirrors an admitted notification for live delivery.
type WSNotification struct {
	NotificationID string                 `json:"notificationId"`
	Category       string                 `json:"category"`
	Priority       string                 `json:"priority"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
}

// WSSoundCue asks the client to play the sound configured for a category.
type WSSoundCue struct {
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

type WSSOSAlert struct {
	AlertID   string           `json:"alertId"`
	Status    string           `json:"status"`
	Message   string           `json:"message,omitempty"`
	Location  LocationSnapshot `json:"location"`
	Timestamp time.Time        `json:"timestamp"`
}
