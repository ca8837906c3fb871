package services

import (
	"time"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/utils"
)

// IsAvailable reports whether one of the weekly slots covers the given date
// and HH:MM time. Both slot bounds are inclusive.
func IsAvailable(slots []models.AvailabilitySlot, date, clock string) bool {
	day, err := utils.ParseDate(date)
	if err != nil || !utils.IsClockTime(clock) {
		return false
	}
	weekday := models.Weekdays[day.Weekday()]

	for _, slot := range slots {
		if !slot.IsAvailable || slot.DayOfWeek != weekday {
			continue
		}
		// zero-padded HH:MM strings order like the times they denote
		if slot.StartTime <= clock && clock <= slot.EndTime {
			return true
		}
	}
	return false
}

// bookingWindow returns the first and last bookable calendar days for now.
func bookingWindow(now time.Time) (first, last time.Time) {
	now = now.UTC()
	first = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 6, 0)
}

// checkBookingDate enforces the booking window on an already well-formed date
// and HH:MM time, both read as UTC. The slot must start after now.
func checkBookingDate(field, date, clock string, now time.Time) error {
	day, err := utils.ParseDate(date)
	if err != nil {
		return fmtValidation("%s must be a date in YYYY-MM-DD format", field)
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.UTC)
	if err != nil {
		return fmtValidation("%s must be a time in HH:MM format", field)
	}
	first, last := bookingWindow(now)
	if day.Before(first) || !start.After(now.UTC()) {
		return fmtValidation("%s cannot be in the past", field)
	}
	if day.After(last) {
		return fmtValidation("%s cannot be more than 6 months ahead", field)
	}
	return nil
}
