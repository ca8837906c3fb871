package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "pending"
	StatusUrgent      AppointmentStatus = "urgent"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusCompleted   AppointmentStatus = "completed"
	StatusNoShow      AppointmentStatus = "no-show"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

// HoldsSlot reports whether an appointment in this status occupies its
// (counselor, date, time) slot.
func (s AppointmentStatus) HoldsSlot() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether the status ends the normal lifecycle.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Priority of an appointment request.
type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityNormal    Priority = "normal"
	PriorityHigh      Priority = "high"
	PriorityUrgent    Priority = "urgent"
	PriorityEmergency Priority = "emergency"
)

// StatusChange is one entry of an appointment's status history.
type StatusChange struct {
	Status    AppointmentStatus `bson:"status" json:"status"`
	ChangedBy string            `bson:"changedBy" json:"changedBy"`
	ChangedAt time.Time         `bson:"changedAt" json:"changedAt"`
	Notes     string            `bson:"notes,omitempty" json:"notes,omitempty"`
}

// RescheduleEntry records one move of an appointment to a new date and time.
type RescheduleEntry struct {
	OldDate       string    `bson:"oldDate" json:"oldDate"`
	OldTime       string    `bson:"oldTime" json:"oldTime"`
	NewDate       string    `bson:"newDate" json:"newDate"`
	NewTime       string    `bson:"newTime" json:"newTime"`
	Reason        string    `bson:"reason" json:"reason"`
	RescheduledBy string    `bson:"rescheduledBy" json:"rescheduledBy"`
	RescheduledAt time.Time `bson:"rescheduledAt" json:"rescheduledAt"`
}

// RecurringSeries describes a requested series of sessions.
type RecurringSeries struct {
	Frequency   string `bson:"frequency" json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	Occurrences int    `bson:"occurrences" json:"occurrences" validate:"required,min=2,max=12"`
}

// Appointment represents a scheduled or requested counseling session
type Appointment struct {
	BaseModel         `bson:",inline"`
	StudentID         string            `gorm:"size:36;index" bson:"studentId" json:"studentId"`
	CounselorID       string            `gorm:"size:36;index" bson:"counselorId" json:"counselorId"`
	Date              string            `gorm:"size:10;index" bson:"date" json:"date"`
	Time              string            `gorm:"size:5" bson:"time" json:"time"`
	Duration          string            `gorm:"size:2" bson:"duration" json:"duration"`
	ContactMethod     string            `gorm:"size:20" bson:"contactMethod" json:"contactMethod"`
	AppointmentType   string            `gorm:"size:40" bson:"appointmentType" json:"appointmentType"`
	Priority          Priority          `gorm:"size:20" bson:"priority" json:"priority"`
	Status            AppointmentStatus `gorm:"size:20;index;default:'pending'" bson:"status" json:"status"`
	Reason            string            `gorm:"type:text" bson:"reason" json:"reason"`
	AlternativeDate   string            `gorm:"size:10" bson:"alternativeDate,omitempty" json:"alternativeDate,omitempty"`
	AlternativeTime   string            `gorm:"size:5" bson:"alternativeTime,omitempty" json:"alternativeTime,omitempty"`
	Recurring         *RecurringSeries  `gorm:"serializer:json;type:text" bson:"recurring,omitempty" json:"recurring,omitempty"`
	StatusHistory     []StatusChange    `gorm:"serializer:json;type:text" bson:"statusHistory,omitempty" json:"statusHistory"`
	RescheduleHistory []RescheduleEntry `gorm:"serializer:json;type:text" bson:"rescheduleHistory,omitempty" json:"rescheduleHistory,omitempty"`

	// SlotKey is set only while the status holds the slot. Both stores keep a
	// unique index on it.
	SlotKey *string `gorm:"size:64;uniqueIndex:uniq_active_slot" bson:"slotKey,omitempty" json:"-"`
}

// SlotKey builds the uniqueness key of a counselor's slot.
func SlotKey(counselorID, date, time string) string {
	return counselorID + "|" + date + "|" + time
}

// SlotKeyFor returns the key the appointment must carry for the given status,
// or nil when that status does not hold the slot.
func (a *Appointment) SlotKeyFor(status AppointmentStatus) *string {
	if !status.HoldsSlot() {
		return nil
	}
	key := SlotKey(a.CounselorID, a.Date, a.Time)
	return &key
}

// IsParticipant reports whether userID is the appointment's student or counselor.
func (a *Appointment) IsParticipant(userID string) bool {
	return userID != "" && (userID == a.StudentID || userID == a.CounselorID)
}
