// models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is an admitted, persisted notification record. Only the
// router creates these; a draft that fails admission never becomes one.
type Notification struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID     `json:"userId" bson:"userId"`
	Category  string                 `json:"category" bson:"category"`
	Priority  string                 `json:"priority" bson:"priority"`
	Title     string                 `json:"title" bson:"title"`
	Message   string                 `json:"message" bson:"message"`
	IsRead    bool                   `json:"isRead" bson:"isRead"`
	ReadAt    time.Time              `json:"readAt,omitempty" bson:"readAt,omitempty"`
	ActionRef string                 `json:"actionRef,omitempty" bson:"actionRef,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time              `json:"createdAt" bson:"createdAt"`
}

// NotificationDraft is a candidate submitted to the router. The router
// decides admission; a dropped draft is not an error.
type NotificationDraft struct {
	Category  string                 `json:"category" validate:"required,notification_category"`
	Priority  string                 `json:"priority" validate:"required,notification_priority"`
	Title     string                 `json:"title" validate:"required,max=200"`
	Message   string                 `json:"message" validate:"required,max=1000"`
	ActionRef string                 `json:"actionRef,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Notification categories
const (
	CategorySystem    = "system"
	CategorySafety    = "safety"
	CategoryTrip      = "trip"
	CategorySocial    = "social"
	CategoryMarketing = "marketing"
)

// Notification priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// NotificationCategories lists every routable category; settings default
// each of these to enabled.
var NotificationCategories = []string{
	CategorySystem,
	CategorySafety,
	CategoryTrip,
	CategorySocial,
	CategoryMarketing,
}

type GetNotificationsRequest struct {
	UserID   string `json:"userId"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Category string `json:"category,omitempty"`
	Unread   bool   `json:"unread,omitempty"`
}
