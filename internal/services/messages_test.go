package services

import (
	"strings"
	"testing"

	"counseling-app-server/internal/models"
)

func TestBuildTitleMessage(t *testing.T) {
	appt := &models.Appointment{Date: "2025-03-10", Time: "14:00", AppointmentType: "follow-up"}

	tests := []struct {
		name     string
		typ      models.NotificationType
		params   notificationParams
		contains string
		wantErr  bool
	}{
		{"new request", models.NotificationNewRequest, notificationParams{Appointment: appt, ActorName: "Sam Lee"}, "Sam Lee requested a follow-up session", false},
		{"urgent", models.NotificationUrgentRequest, notificationParams{Appointment: appt, ActorName: "Sam Lee"}, "emergency", false},
		{"status", models.NotificationStatusUpdate, notificationParams{Appointment: appt, Status: models.StatusNoShow}, "no-show", false},
		{"status without phrase", models.NotificationStatusUpdate, notificationParams{Appointment: appt, Status: models.StatusPending}, "", true},
		{"rescheduled", models.NotificationRescheduled, notificationParams{Appointment: appt, ActorName: "The student", OldDate: "2025-03-09", OldTime: "10:00"}, "from 2025-03-09 at 10:00", false},
		{"rescheduled without old slot", models.NotificationRescheduled, notificationParams{Appointment: appt}, "", true},
		{"notes", models.NotificationSessionNotes, notificationParams{Appointment: appt}, "added notes", false},
		{"no appointment", models.NotificationNewRequest, notificationParams{}, "", true},
		{"unknown type", "weekly_digest", notificationParams{Appointment: appt}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, message, err := BuildTitleMessage(tt.typ, tt.params)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildTitleMessage: %v", err)
			}
			if title == "" {
				t.Error("empty title")
			}
			if !strings.Contains(message, tt.contains) {
				t.Errorf("message %q does not contain %q", message, tt.contains)
			}
		})
	}
}
