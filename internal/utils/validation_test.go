package utils

import (
	"strings"
	"testing"
	"time"

	"counseling-app-server/internal/models"
)

func TestIsClockTime(t *testing.T) {
	tests := map[string]bool{
		"00:00": true,
		"09:30": true,
		"23:59": true,
		"24:00": false,
		"9:30":  false,
		"09:60": false,
		"0930":  false,
		"":      false,
	}
	for in, want := range tests {
		if got := IsClockTime(in); got != want {
			t.Errorf("IsClockTime(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWeekdayIndex(t *testing.T) {
	if d, ok := WeekdayIndex("wednesday"); !ok || d != time.Wednesday {
		t.Errorf("WeekdayIndex(wednesday) = %v, %v", d, ok)
	}
	if d, ok := WeekdayIndex("sunday"); !ok || d != time.Sunday {
		t.Errorf("WeekdayIndex(sunday) = %v, %v", d, ok)
	}
	if _, ok := WeekdayIndex("Monday"); ok {
		t.Error("WeekdayIndex accepted a capitalized name")
	}
}

type slotInput struct {
	Day   string `json:"dayOfWeek" validate:"required,weekday"`
	Start string `json:"startTime" validate:"required,hhmm"`
	Date  string `json:"date" validate:"omitempty,isodate"`
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
	Notes string `json:"notes" validate:"max=5"`
}

func TestValidateCustomRules(t *testing.T) {
	valid := slotInput{Day: "friday", Start: "08:15", Date: "2025-02-28"}
	if err := Validate(valid); err != nil {
		t.Fatalf("Validate(valid) = %v", err)
	}

	err := Validate(slotInput{Day: "funday", Start: "8:15", Date: "2025-02-30", Kind: "c", Notes: "too long"})
	if err == nil {
		t.Fatal("Validate accepted invalid input")
	}
	msg := FormatValidationError(err)
	for _, want := range []string{
		"dayOfWeek must be a lowercase day of the week",
		"startTime must be a time in HH:MM format",
		"date must be a date in YYYY-MM-DD format",
		"kind must be one of [a b]",
		"notes must be at most 5 characters",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}
}

func TestFormatValidationErrorRequired(t *testing.T) {
	err := Validate(slotInput{})
	if got := FormatValidationError(err); got != "dayOfWeek is required, startTime is required" {
		t.Errorf("FormatValidationError = %q", got)
	}
}

func TestValidateAvailabilityWindows(t *testing.T) {
	tests := []struct {
		name    string
		profile models.CounselorProfile
		wantMsg string
	}{
		{"ordered", models.CounselorProfile{Availability: []models.AvailabilitySlot{
			{DayOfWeek: "monday", StartTime: "09:00", EndTime: "17:00"},
		}}, ""},
		{"reversed", models.CounselorProfile{Availability: []models.AvailabilitySlot{
			{DayOfWeek: "monday", StartTime: "17:00", EndTime: "09:00"},
		}}, "endTime must be after startTime"},
		{"empty", models.CounselorProfile{Availability: []models.AvailabilitySlot{
			{DayOfWeek: "monday", StartTime: "09:00", EndTime: "09:00"},
		}}, "endTime must be after startTime"},
		{"malformed time", models.CounselorProfile{Availability: []models.AvailabilitySlot{
			{DayOfWeek: "monday", StartTime: "9am", EndTime: "09:00"},
		}}, "startTime must be a time in HH:MM format"},
		{"too many", models.CounselorProfile{Availability: make([]models.AvailabilitySlot, 51)},
			"availability must be at most 50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.profile)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("Validate = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate accepted the profile")
			}
			if msg := FormatValidationError(err); !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("message %q does not contain %q", msg, tt.wantMsg)
			}
		})
	}
}
