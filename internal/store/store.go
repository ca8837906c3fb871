// Package store defines the persistence contract of the counseling server.
// Implementations live in mongostore (document database) and sqlstore (gorm).
package store

import (
	"context"
	"errors"
	"time"

	"counseling-app-server/internal/models"
)

var (
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrStale is returned when a record read in the transaction was changed
	// by another writer before the update reached it.
	ErrStale = errors.New("store: record changed concurrently")
)

// Collection names shared by every implementation.
const (
	CollectionUsers         = "users"
	CollectionAppointments  = "appointments"
	CollectionNotifications = "notifications"
	CollectionSessionNotes  = "session_notes"
)

// AppointmentFilter narrows ListAppointments. Empty fields match everything.
type AppointmentFilter struct {
	StudentID   string
	CounselorID string
	Status      models.AppointmentStatus
}

// AppointmentUpdate is a partial update applied atomically to one appointment.
// Nil fields are left untouched. History entries are appended, never replaced.
type AppointmentUpdate struct {
	Status *models.AppointmentStatus
	Date   *string
	Time   *string
	// SlotKey is written as given; nil removes the key.
	SlotKey         *string
	StatusEntry     *models.StatusChange
	RescheduleEntry *models.RescheduleEntry
	UpdatedAt       time.Time
}

// Store is the handle to the database. It is created at startup and closed on shutdown.
type Store interface {
	Reader

	// RunInTransaction runs fn with a Tx. Either every write made through the
	// Tx becomes visible or none does.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// CreateUser inserts a user; ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserProfile(ctx context.Context, id, firstName, lastName string) error
	SetAvailability(ctx context.Context, counselorID string, slots []models.AvailabilitySlot) error
	MarkNotificationRead(ctx context.Context, id, userID string) error

	Close(ctx context.Context) error
}

// Reader holds the non-transactional queries.
type Reader interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)

	FindAppointmentByID(ctx context.Context, id string) (*models.Appointment, error)
	// HasActiveAppointment reports whether a slot-holding appointment exists
	// for (counselorID, date, slotTime).
	HasActiveAppointment(ctx context.Context, counselorID, date, slotTime string) (bool, error)
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)

	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	FindSessionNotes(ctx context.Context, appointmentID string) (*models.SessionNotes, error)
}

// Tx is the write set available inside RunInTransaction.
type Tx interface {
	// FindAppointmentForUpdate reads an appointment so that no other
	// transaction can change it before this one ends. Status changes decide
	// from this copy, never from a read taken outside the transaction.
	FindAppointmentForUpdate(ctx context.Context, id string) (*models.Appointment, error)
	// InsertAppointment returns ErrDuplicate when the slot key is taken.
	InsertAppointment(ctx context.Context, appt *models.Appointment) error
	// UpdateAppointment returns ErrNotFound, ErrDuplicate or ErrStale.
	UpdateAppointment(ctx context.Context, id string, update AppointmentUpdate) error
	AppendAppointmentSummary(ctx context.Context, studentID string, summary models.AppointmentSummary) error
	IncrementMetric(ctx context.Context, counselorID string, metric models.Metric) error
	InsertNotifications(ctx context.Context, notifications []models.Notification) error
	// InsertSessionNotes returns ErrDuplicate when the appointment already has notes.
	InsertSessionNotes(ctx context.Context, notes *models.SessionNotes) error
}
