package services

import (
	"context"
	"errors"
	"fmt"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"
	"counseling-app-server/internal/utils"

	"go.uber.org/zap"
)

// CreateSessionNotes records the counselor's notes for an appointment and
// completes it if it is still open.
func (s *AppointmentService) CreateSessionNotes(ctx context.Context, actor Actor, appointmentID string, req SessionNotesRequest) (*models.SessionNotes, error) {
	if actor.Role != models.RoleCounselor {
		return nil, permissionDenied("only counselors can add session notes")
	}
	if err := utils.Validate(req); err != nil {
		return nil, validationError(err)
	}

	stamp := s.timestamp()
	risk := req.RiskLevel
	if risk == "" {
		risk = models.RiskNone
	}
	var (
		notes     *models.SessionNotes
		completes bool
	)
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		appt, err := lockAppointment(ctx, tx, appointmentID)
		if err != nil {
			return err
		}
		if appt.CounselorID != actor.ID {
			return permissionDenied("appointment belongs to another counselor")
		}
		if appt.Status == models.StatusCancelled || appt.Status == models.StatusNoShow {
			return fmtValidation("cannot add notes to a %s appointment", appt.Status)
		}

		notes = &models.SessionNotes{
			ID:               models.NewID(),
			AppointmentID:    appt.ID,
			CounselorID:      appt.CounselorID,
			StudentID:        appt.StudentID,
			Summary:          req.Summary,
			Observations:     req.Observations,
			Recommendations:  req.Recommendations,
			RiskLevel:        risk,
			FollowUpRequired: req.FollowUpRequired,
			CreatedAt:        stamp,
		}
		if err := tx.InsertSessionNotes(ctx, notes); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return fmtValidation("session notes already exist for this appointment")
			}
			return err
		}

		completes = appt.Status != models.StatusCompleted
		if !completes {
			return nil
		}
		status := models.StatusCompleted
		update := store.AppointmentUpdate{
			Status:  &status,
			SlotKey: nil,
			StatusEntry: &models.StatusChange{
				Status:    status,
				ChangedBy: actor.ID,
				ChangedAt: stamp,
				Notes:     "Session notes added",
			},
			UpdatedAt: stamp,
		}
		applyUpdate(appt, update)
		notification, err := newNotification(appt.StudentID, models.NotificationSessionNotes,
			notificationParams{Appointment: appt}, stamp)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransactionFailure, err)
		}

		if err := tx.UpdateAppointment(ctx, appt.ID, update); err != nil {
			return err
		}
		if err := tx.IncrementMetric(ctx, appt.CounselorID, models.MetricTotalSessions); err != nil {
			return err
		}
		return tx.InsertNotifications(ctx, []models.Notification{notification})
	})
	if err != nil {
		err = txError(err)
		s.log.Warn("Adding session notes failed", zap.String("appointment_id", appointmentID), zap.Error(err))
		return nil, err
	}

	s.log.Info("Session notes added",
		zap.String("appointment_id", notes.AppointmentID),
		zap.String("counselor_id", actor.ID),
		zap.String("risk_level", string(notes.RiskLevel)),
		zap.Bool("completed_appointment", completes))
	return notes, nil
}

// GetSessionNotes returns an appointment's notes to its counselor or an admin.
func (s *AppointmentService) GetSessionNotes(ctx context.Context, actor Actor, appointmentID string) (*models.SessionNotes, error) {
	appt, err := s.store.FindAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, lookupError(err, "appointment")
	}
	if appt.CounselorID != actor.ID && !actor.IsAdmin() {
		return nil, permissionDenied("session notes are visible to the counselor only")
	}
	notes, err := s.store.FindSessionNotes(ctx, appointmentID)
	if err != nil {
		return nil, lookupError(err, "session notes")
	}
	return notes, nil
}
