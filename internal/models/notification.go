package models

import (
	"time"
)

// NotificationType identifies what a notification is about.
type NotificationType string

const (
	NotificationNewRequest    NotificationType = "new_appointment_request"
	NotificationUrgentRequest NotificationType = "urgent_appointment_request"
	NotificationStatusUpdate  NotificationType = "appointment_status_update"
	NotificationRescheduled   NotificationType = "appointment_rescheduled"
	NotificationSessionNotes  NotificationType = "session_notes_added"
)

// Notification is a message delivered to a user's inbox.
type Notification struct {
	ID        string            `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	UserID    string            `gorm:"size:36;index" bson:"userId" json:"userId"`
	Type      NotificationType  `gorm:"size:40" bson:"type" json:"type"`
	Title     string            `gorm:"size:255" bson:"title" json:"title"`
	Message   string            `gorm:"type:text" bson:"message" json:"message"`
	Payload   map[string]string `gorm:"serializer:json;type:text" bson:"payload,omitempty" json:"payload,omitempty"`
	Urgent    bool              `gorm:"default:false" bson:"urgent" json:"urgent"`
	Read      bool              `gorm:"default:false;index" bson:"read" json:"read"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
}
