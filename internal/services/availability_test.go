package services

import (
	"errors"
	"testing"
	"time"

	"counseling-app-server/internal/models"
)

func TestIsAvailable(t *testing.T) {
	slots := []models.AvailabilitySlot{
		{DayOfWeek: "monday", StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
		{DayOfWeek: "monday", StartTime: "13:00", EndTime: "17:00", IsAvailable: true},
		{DayOfWeek: "tuesday", StartTime: "09:00", EndTime: "17:00", IsAvailable: false},
	}

	tests := []struct {
		name  string
		date  string
		clock string
		want  bool
	}{
		{"inside first window", "2025-03-10", "10:30", true},
		{"start bound inclusive", "2025-03-10", "09:00", true},
		{"end bound inclusive", "2025-03-10", "17:00", true},
		{"lunch gap", "2025-03-10", "12:30", false},
		{"after hours", "2025-03-10", "17:01", false},
		{"slot switched off", "2025-03-11", "10:00", false},
		{"no slot that day", "2025-03-12", "10:00", false},
		{"malformed date", "2025-13-10", "10:00", false},
		{"malformed time", "2025-03-10", "9:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAvailable(slots, tt.date, tt.clock); got != tt.want {
				t.Errorf("IsAvailable(%s %s) = %v, want %v", tt.date, tt.clock, got, tt.want)
			}
		})
	}

	if IsAvailable(nil, "2025-03-10", "10:00") {
		t.Error("no slots must mean unavailable")
	}
}

func TestCheckBookingDate(t *testing.T) {
	now := time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		date, clock string
		wantErr     bool
	}{
		{"2025-03-01", "15:00", false},
		{"2025-03-01", "14:30", true},
		{"2025-03-01", "09:00", true},
		{"2025-02-28", "23:00", true},
		{"2025-09-01", "08:00", false},
		{"2025-09-02", "08:00", true},
		{"not-a-date", "08:00", true},
		{"2025-03-02", "8am", true},
	}
	for _, tt := range tests {
		err := checkBookingDate("date", tt.date, tt.clock, now)
		if (err != nil) != tt.wantErr {
			t.Errorf("checkBookingDate(%s %s) err = %v, wantErr %v", tt.date, tt.clock, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrValidation) {
			t.Errorf("checkBookingDate(%s %s) err = %v, want ErrValidation", tt.date, tt.clock, err)
		}
	}
}
