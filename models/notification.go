package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationTypeProgress is the type discriminator for progress notifications
const NotificationTypeProgress = "progress"

// ProgressState represents the state of the task behind a progress notification
type ProgressState string

const (
	ProgressQueued  ProgressState = "queued"
	ProgressActive  ProgressState = "active"
	ProgressSuccess ProgressState = "success"
	ProgressError   ProgressState = "error"
)

// IsComplete reports whether the task has finished, successfully or not.
// Consumers use this to stop polling a progress record.
func (s ProgressState) IsComplete() bool {
	return s == ProgressSuccess || s == ProgressError
}

// Field names inside a progress notification's data payload
const (
	ProgressFieldTitle   = "title"
	ProgressFieldTotal   = "total"
	ProgressFieldCurrent = "current"
	ProgressFieldState   = "state"
	ProgressFieldMessage = "message"
)

// Notification model
type Notification struct {
	ID      primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Type    string             `json:"type" bson:"type"`                 // Discriminator, determines the shape of Data (e.g., "progress")
	UserID  primitive.ObjectID `json:"userId" bson:"userId"`             // The user who receives the notification
	Data    bson.M             `json:"data" bson:"data"`                 // Type-specific payload
	Time    time.Time          `json:"time" bson:"time"`                 // Timestamp of notification creation
	Expires *time.Time         `json:"expires,omitempty" bson:"expires,omitempty"` // Absent means the notification never expires
}

// ProgressData builds the data payload of a progress notification.
func ProgressData(title string, total float64, state ProgressState, current float64, message string) bson.M {
	return bson.M{
		ProgressFieldTitle:   title,
		ProgressFieldTotal:   total,
		ProgressFieldCurrent: current,
		ProgressFieldState:   string(state),
		ProgressFieldMessage: message,
	}
}
