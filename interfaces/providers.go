package interfaces

import (
	"context"

	"safetrip/models"
)

// External collaborators the core calls through narrow interfaces. The
// services own none of this logic; production wiring lives in services/
// and websocket/, tests substitute fakes.

// LocationProvider answers "where is this user right now". An unavailable
// fix is reported as an error; SOS trigger and manual check-in fail their
// precondition on it.
type LocationProvider interface {
	CurrentLocation(ctx context.Context, userID string) (*models.LocationSnapshot, error)
}

// ContactDirectory is the read-only view of a user's emergency contacts
// used for SOS fan-out.
type ContactDirectory interface {
	PrimaryAndSecondaryContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error)
}

// Presenter receives delivery intents for the presentation layer. The
// core does not know how these render.
type Presenter interface {
	NotificationDelivered(userID string, notification models.Notification)
	SoundCue(userID string, category string)
}

// AlertDispatcher receives one dispatch request per emergency contact
// when an SOS alert becomes active. Delivery success or failure is
// reported asynchronously and logged, never propagated to the trigger.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, req models.AlertDispatchRequest) error
}

// PushDeliverer carries an admitted notification to the user's
// registered devices through an external push channel.
type PushDeliverer interface {
	DeliverPush(ctx context.Context, userID string, notification models.Notification) error
}

// SOSBroadcaster pushes live SOS state changes to the user's own
// connected devices.
type SOSBroadcaster interface {
	SendSOSAlert(userID string, alert models.SOSAlert)
}
