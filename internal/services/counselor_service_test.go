package services

import (
	"context"
	"testing"

	"counseling-app-server/internal/models"

	"go.uber.org/zap"
)

func TestCounselorDirectory(t *testing.T) {
	f := newFixture(t)
	svc := NewCounselorService(f.mem, zap.NewNop())
	ctx := context.Background()

	counselors, err := svc.ListCounselors(ctx)
	if err != nil {
		t.Fatalf("ListCounselors: %v", err)
	}
	if len(counselors) != 1 || counselors[0].ID != f.counselor.ID {
		t.Fatalf("counselors = %+v, want only %s", counselors, f.counselor.ID)
	}
	if counselors[0].PerformanceMetrics == nil {
		t.Error("counselor entries must carry performance metrics")
	}

	if _, err := svc.GetCounselor(ctx, f.counselor.ID); err != nil {
		t.Fatalf("GetCounselor: %v", err)
	}
	_, err = svc.GetCounselor(ctx, f.student.ID)
	assertKind(t, err, ErrNotFound)
}

func TestSetAvailability(t *testing.T) {
	f := newFixture(t)
	svc := NewCounselorService(f.mem, zap.NewNop())
	ctx := context.Background()

	req := SetAvailabilityRequest{Slots: []models.AvailabilitySlot{
		{DayOfWeek: "friday", StartTime: "10:00", EndTime: "14:00", IsAvailable: true},
	}}
	updated, err := svc.SetAvailability(ctx, actorOf(f.counselor), f.counselor.ID, req)
	if err != nil {
		t.Fatalf("SetAvailability: %v", err)
	}
	if got := updated.CounselorProfile.Availability; len(got) != 1 || got[0].DayOfWeek != "friday" {
		t.Errorf("availability = %+v", got)
	}
	if got := updated.CounselorProfile.Specializations; len(got) != 1 {
		t.Errorf("specializations = %v, want them kept", got)
	}

	// The booking path now follows the new schedule.
	_, err = f.svc.CreateAppointment(ctx, actorOf(f.student), f.bookingRequest())
	assertKind(t, err, ErrCounselorUnavailable)

	tooMany := SetAvailabilityRequest{Slots: make([]models.AvailabilitySlot, 51)}
	for i := range tooMany.Slots {
		tooMany.Slots[i] = models.AvailabilitySlot{DayOfWeek: "monday", StartTime: "09:00", EndTime: "10:00"}
	}

	tests := []struct {
		name    string
		actor   Actor
		target  string
		req     SetAvailabilityRequest
		wantErr AppointmentError
	}{
		{"student", actorOf(f.student), f.counselor.ID, req, ErrPermissionDenied},
		{"other counselor's schedule", actorOf(f.counselor), f.admin.ID, req, ErrPermissionDenied},
		{"admin on a non-counselor", actorOf(f.admin), f.student.ID, req, ErrNotFound},
		{"bad weekday", actorOf(f.counselor), f.counselor.ID, SetAvailabilityRequest{Slots: []models.AvailabilitySlot{
			{DayOfWeek: "Funday", StartTime: "09:00", EndTime: "10:00"},
		}}, ErrValidation},
		{"start after end", actorOf(f.counselor), f.counselor.ID, SetAvailabilityRequest{Slots: []models.AvailabilitySlot{
			{DayOfWeek: "monday", StartTime: "15:00", EndTime: "10:00"},
		}}, ErrValidation},
		{"empty window", actorOf(f.counselor), f.counselor.ID, SetAvailabilityRequest{Slots: []models.AvailabilitySlot{
			{DayOfWeek: "monday", StartTime: "10:00", EndTime: "10:00"},
		}}, ErrValidation},
		{"too many slots", actorOf(f.admin), f.counselor.ID, tooMany, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetAvailability(ctx, tt.actor, tt.target, tt.req)
			assertKind(t, err, tt.wantErr)
		})
	}
}
