package services

import (
	"errors"
	"fmt"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"
	"counseling-app-server/internal/utils"
)

// AppointmentError is the closed set of failures the services report.
// Details are attached with fmt.Errorf("%w: ...") and matched with errors.Is.
type AppointmentError string

func (e AppointmentError) Error() string { return string(e) }

const (
	ErrValidation           AppointmentError = "validation failed"
	ErrPermissionDenied     AppointmentError = "permission denied"
	ErrNotFound             AppointmentError = "not found"
	ErrSlotConflict         AppointmentError = "time slot is already booked"
	ErrCounselorUnavailable AppointmentError = "counselor is not available at the requested time"
	ErrTransactionFailure   AppointmentError = "transaction failed"
)

// Kind returns the AppointmentError wrapped in err, if any.
func Kind(err error) (AppointmentError, bool) {
	var kind AppointmentError
	if errors.As(err, &kind) {
		return kind, true
	}
	return "", false
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

func validationError(err error) error {
	return fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationError(err))
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func permissionDenied(reason string) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, reason)
}

// lookupError maps a store read failure. Anything but ErrNotFound is an
// infrastructure failure.
func lookupError(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(what)
	}
	return fmt.Errorf("%w: loading %s: %v", ErrTransactionFailure, what, err)
}

// txError maps the error returned by RunInTransaction. Service kinds raised
// inside the transaction pass through; a lost unique-slot race becomes
// ErrSlotConflict.
func txError(err error) error {
	if _, ok := Kind(err); ok {
		return err
	}
	if errors.Is(err, store.ErrDuplicate) {
		return fmt.Errorf("%w: %v", ErrSlotConflict, err)
	}
	if errors.Is(err, store.ErrStale) {
		return fmt.Errorf("%w: appointment changed concurrently, retry the request", ErrTransactionFailure)
	}
	return fmt.Errorf("%w: %v", ErrTransactionFailure, err)
}

func fmtValidation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}
