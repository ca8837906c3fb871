package services

import (
	"counseling-app-server/internal/models"
)

// CreateAppointmentRequest is a student's booking request.
type CreateAppointmentRequest struct {
	CounselorID     string                  `json:"counselorId" validate:"required"`
	Date            string                  `json:"date" validate:"required,isodate"`
	Time            string                  `json:"time" validate:"required,hhmm"`
	Duration        string                  `json:"duration" validate:"required,oneof=30 45 60 90"`
	ContactMethod   string                  `json:"contactMethod" validate:"omitempty,oneof=video chat in-person phone"`
	AppointmentType string                  `json:"appointmentType" validate:"required,oneof=initial-consultation follow-up crisis-intervention academic-stress anxiety depression relationship career-guidance grief-counseling substance-abuse group-session wellness-check other"`
	Priority        models.Priority         `json:"priority" validate:"omitempty,oneof=low normal high urgent emergency"`
	Reason          string                  `json:"reason" validate:"required,min=10,max=2000"`
	AlternativeDate string                  `json:"alternativeDate" validate:"omitempty,isodate"`
	AlternativeTime string                  `json:"alternativeTime" validate:"omitempty,hhmm"`
	Recurring       *models.RecurringSeries `json:"recurring" validate:"omitempty"`
}

// Defaults applied when a request leaves the optional enums empty.
const (
	DefaultContactMethod = "in-person"
	DefaultPriority      = models.PriorityNormal
)

// UpdateStatusRequest moves an appointment to a new status.
type UpdateStatusRequest struct {
	Status models.AppointmentStatus `json:"status" validate:"required,oneof=confirmed cancelled completed no-show"`
	Notes  string                   `json:"notes" validate:"max=1000"`
}

// RescheduleRequest moves an appointment to another date and time.
type RescheduleRequest struct {
	NewDate string `json:"newDate" validate:"required,isodate"`
	NewTime string `json:"newTime" validate:"required,hhmm"`
	Reason  string `json:"reason" validate:"required,min=10,max=2000"`
}

// ListAppointmentsRequest filters the caller's appointments.
type ListAppointmentsRequest struct {
	Status models.AppointmentStatus `form:"status" json:"status" validate:"omitempty,oneof=pending urgent confirmed cancelled completed no-show rescheduled"`
}

// SessionNotesRequest documents a held session.
type SessionNotesRequest struct {
	Summary          string           `json:"summary" validate:"required,min=10,max=5000"`
	Observations     string           `json:"observations" validate:"max=5000"`
	Recommendations  string           `json:"recommendations" validate:"max=5000"`
	RiskLevel        models.RiskLevel `json:"riskLevel" validate:"omitempty,oneof=none low moderate high critical"`
	FollowUpRequired bool             `json:"followUpRequired"`
}

// SetAvailabilityRequest replaces a counselor's weekly schedule, at most 50 slots.
type SetAvailabilityRequest struct {
	Slots []models.AvailabilitySlot `json:"slots" validate:"max=50,dive"`
}
