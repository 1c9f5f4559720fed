// models/location.go
package models

import "time"

// LocationSnapshot is the point-in-time fix attached to SOS alerts and
// check-ins. It is copied by value into the owning record so that later
// location updates never rewrite history.
type LocationSnapshot struct {
	Latitude  float64   `json:"latitude" bson:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64   `json:"longitude" bson:"longitude" validate:"gte=-180,lte=180"`
	Accuracy  float64   `json:"accuracy" bson:"accuracy"` // meters
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// IsZero reports whether the snapshot carries no fix at all.
func (l LocationSnapshot) IsZero() bool {
	return l.Latitude == 0 && l.Longitude == 0 && l.Timestamp.IsZero()
}

type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Accuracy  float64 `json:"accuracy" validate:"gte=0"`
}
