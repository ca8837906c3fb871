// Package notify delivers out-of-band alerts to counselors. In-app
// notifications are written by the services package; this package only
// covers channels outside the database.
package notify

import (
	"context"

	"counseling-app-server/internal/models"
)

// UrgentRequest carries what a counselor needs to act on an emergency booking.
// Alerts leave the platform, so they carry no student details; the counselor
// follows the link to read the request.
type UrgentRequest struct {
	Counselor   *models.User
	Appointment *models.Appointment
}

// Notifier sends urgent-request alerts.
type Notifier interface {
	NotifyUrgentRequest(ctx context.Context, req UrgentRequest) error
}

// Nop discards every alert. It is used when no mail transport is configured.
type Nop struct{}

func (Nop) NotifyUrgentRequest(context.Context, UrgentRequest) error { return nil }
