// models/contact.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmergencyContact is a person the user wants reached when an SOS alert
// fires. At most one contact per user carries IsPrimary; promoting a
// contact demotes the previous primary in the same repository operation.
type EmergencyContact struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"userId"`
	Name         string             `json:"name" bson:"name"`
	Phone        string             `json:"phone" bson:"phone"`
	Relationship string             `json:"relationship" bson:"relationship"`
	IsPrimary    bool               `json:"isPrimary" bson:"isPrimary"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type AddContactRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	Phone        string `json:"phone" validate:"required,phone"`
	Relationship string `json:"relationship" validate:"required,max=50"`
	IsPrimary    bool   `json:"isPrimary"`
}

type UpdateContactRequest struct {
	Name         string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,phone"`
	Relationship string `json:"relationship,omitempty" validate:"omitempty,max=50"`
}
