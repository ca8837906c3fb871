package services

import (
	"fmt"
	"time"

	"counseling-app-server/internal/models"
)

// notificationParams feeds the title and message templates.
type notificationParams struct {
	Appointment *models.Appointment
	ActorName   string
	Status      models.AppointmentStatus
	OldDate     string
	OldTime     string
}

var statusPhrases = map[models.AppointmentStatus]string{
	models.StatusConfirmed: "has been confirmed",
	models.StatusCancelled: "has been cancelled",
	models.StatusCompleted: "has been marked as completed",
	models.StatusNoShow:    "has been marked as a no-show",
}

// BuildTitleMessage renders the inbox text for a notification type.
func BuildTitleMessage(t models.NotificationType, p notificationParams) (title, message string, err error) {
	appt := p.Appointment
	if appt == nil {
		return "", "", fmt.Errorf("missing appointment for %s", t)
	}

	switch t {
	case models.NotificationNewRequest:
		return "New appointment request",
			fmt.Sprintf("%s requested a %s session on %s at %s.", p.ActorName, appt.AppointmentType, appt.Date, appt.Time), nil

	case models.NotificationUrgentRequest:
		return "URGENT: emergency appointment request",
			fmt.Sprintf("%s marked a request for %s at %s as an emergency. Please respond as soon as possible.", p.ActorName, appt.Date, appt.Time), nil

	case models.NotificationStatusUpdate:
		phrase, ok := statusPhrases[p.Status]
		if !ok {
			return "", "", fmt.Errorf("no message for status %q", p.Status)
		}
		return "Appointment status updated",
			fmt.Sprintf("Your appointment on %s at %s %s.", appt.Date, appt.Time, phrase), nil

	case models.NotificationRescheduled:
		if p.OldDate == "" || p.OldTime == "" {
			return "", "", fmt.Errorf("missing previous slot for %s", t)
		}
		return "Appointment rescheduled",
			fmt.Sprintf("%s moved the appointment from %s at %s to %s at %s.", p.ActorName, p.OldDate, p.OldTime, appt.Date, appt.Time), nil

	case models.NotificationSessionNotes:
		return "Session completed",
			fmt.Sprintf("Your counselor added notes for the session on %s at %s.", appt.Date, appt.Time), nil
	}
	return "", "", fmt.Errorf("unknown notification type: %s", t)
}

// newNotification builds one inbox entry for recipient.
func newNotification(recipient string, t models.NotificationType, p notificationParams, now time.Time) (models.Notification, error) {
	title, message, err := BuildTitleMessage(t, p)
	if err != nil {
		return models.Notification{}, err
	}
	appt := p.Appointment
	return models.Notification{
		ID:      models.NewID(),
		UserID:  recipient,
		Type:    t,
		Title:   title,
		Message: message,
		Payload: map[string]string{
			"appointmentId": appt.ID,
			"date":          appt.Date,
			"time":          appt.Time,
			"status":        string(appt.Status),
		},
		Urgent:    t == models.NotificationUrgentRequest,
		CreatedAt: now,
	}, nil
}

func displayName(u *models.User, fallback string) string {
	if u == nil || u.FirstName == "" {
		return fallback
	}
	return u.FullName()
}
