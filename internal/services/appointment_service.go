// Package services holds the appointment lifecycle and the operations around it.
// Every operation takes the authenticated Actor and returns an AppointmentError
// kind on failure.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/notify"
	"counseling-app-server/internal/store"
	"counseling-app-server/internal/utils"

	"go.uber.org/zap"
)

// urgentAlertTimeout bounds the best-effort email sent after an emergency booking.
const urgentAlertTimeout = 30 * time.Second

// AppointmentService drives appointment requests through their lifecycle.
type AppointmentService struct {
	store    store.Store
	log      *zap.Logger
	notifier notify.Notifier
	now      func() time.Time

	alerts sync.WaitGroup
}

// Option configures an AppointmentService.
type Option func(*AppointmentService)

// WithNotifier sets the out-of-band channel used for emergency requests.
func WithNotifier(n notify.Notifier) Option {
	return func(s *AppointmentService) { s.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *AppointmentService) { s.now = now }
}

// NewAppointmentService returns a service bound to st.
func NewAppointmentService(st store.Store, log *zap.Logger, opts ...Option) *AppointmentService {
	s := &AppointmentService{
		store:    st,
		log:      log,
		notifier: notify.Nop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close waits for in-flight urgent alerts, or until ctx is done.
func (s *AppointmentService) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.alerts.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AppointmentService) timestamp() time.Time {
	return models.Timestamp(s.now())
}

// CreateAppointment books a session for the calling student.
func (s *AppointmentService) CreateAppointment(ctx context.Context, actor Actor, req CreateAppointmentRequest) (*models.Appointment, error) {
	if actor.Role != models.RoleStudent {
		return nil, permissionDenied("only students can request appointments")
	}
	if err := utils.Validate(req); err != nil {
		return nil, validationError(err)
	}
	now := s.now()
	if err := checkBookingDate("date", req.Date, req.Time, now); err != nil {
		return nil, err
	}

	taken, err := s.store.HasActiveAppointment(ctx, req.CounselorID, req.Date, req.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: checking slot: %v", ErrTransactionFailure, err)
	}
	if taken {
		return nil, ErrSlotConflict
	}

	counselor, err := s.store.FindUserByID(ctx, req.CounselorID)
	if err != nil {
		return nil, lookupError(err, "counselor")
	}
	if counselor.Role != models.RoleCounselor {
		return nil, notFound("counselor")
	}
	if !IsAvailable(counselor.Availability(), req.Date, req.Time) {
		return nil, ErrCounselorUnavailable
	}

	student, err := s.store.FindUserByID(ctx, actor.ID)
	if err != nil {
		return nil, lookupError(err, "student")
	}

	stamp := models.Timestamp(now)
	appt := newAppointment(actor.ID, req, stamp)

	notifications, err := s.requestNotifications(appt, student, stamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailure, err)
	}

	err = s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertAppointment(ctx, appt); err != nil {
			return err
		}
		summary := models.AppointmentSummary{
			AppointmentID: appt.ID,
			CounselorID:   appt.CounselorID,
			Date:          appt.Date,
			Time:          appt.Time,
			Status:        appt.Status,
			CreatedAt:     stamp,
		}
		if err := tx.AppendAppointmentSummary(ctx, student.ID, summary); err != nil {
			return err
		}
		return tx.InsertNotifications(ctx, notifications)
	})
	if err != nil {
		err = txError(err)
		s.log.Warn("Appointment request failed",
			zap.String("student_id", actor.ID),
			zap.String("counselor_id", req.CounselorID),
			zap.String("date", req.Date),
			zap.String("time", req.Time),
			zap.Error(err))
		return nil, err
	}

	s.log.Info("Appointment requested",
		zap.String("appointment_id", appt.ID),
		zap.String("student_id", appt.StudentID),
		zap.String("counselor_id", appt.CounselorID),
		zap.String("status", string(appt.Status)),
		zap.String("priority", string(appt.Priority)))

	if appt.Priority == models.PriorityEmergency {
		s.sendUrgentAlert(ctx, counselor, appt)
	}
	return appt, nil
}

func newAppointment(studentID string, req CreateAppointmentRequest, stamp time.Time) *models.Appointment {
	priority := req.Priority
	if priority == "" {
		priority = DefaultPriority
	}
	contact := req.ContactMethod
	if contact == "" {
		contact = DefaultContactMethod
	}
	status := models.StatusPending
	if priority == models.PriorityEmergency {
		status = models.StatusUrgent
	}

	appt := &models.Appointment{
		StudentID:       studentID,
		CounselorID:     req.CounselorID,
		Date:            req.Date,
		Time:            req.Time,
		Duration:        req.Duration,
		ContactMethod:   contact,
		AppointmentType: req.AppointmentType,
		Priority:        priority,
		Status:          status,
		Reason:          req.Reason,
		AlternativeDate: req.AlternativeDate,
		AlternativeTime: req.AlternativeTime,
		Recurring:       req.Recurring,
		StatusHistory: []models.StatusChange{{
			Status:    status,
			ChangedBy: studentID,
			ChangedAt: stamp,
			Notes:     "Appointment requested",
		}},
	}
	appt.ID = models.NewID()
	appt.CreatedAt = stamp
	appt.UpdatedAt = stamp
	appt.SlotKey = appt.SlotKeyFor(status)
	return appt
}

// requestNotifications builds the counselor's inbox entries for a new request:
// one standard entry, plus an urgent one for emergencies.
func (s *AppointmentService) requestNotifications(appt *models.Appointment, student *models.User, stamp time.Time) ([]models.Notification, error) {
	params := notificationParams{Appointment: appt, ActorName: displayName(student, "A student")}

	types := []models.NotificationType{models.NotificationNewRequest}
	if appt.Priority == models.PriorityEmergency {
		types = append(types, models.NotificationUrgentRequest)
	}

	out := make([]models.Notification, 0, len(types))
	for _, t := range types {
		n, err := newNotification(appt.CounselorID, t, params, stamp)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// sendUrgentAlert emails the counselor without holding up the request.
func (s *AppointmentService) sendUrgentAlert(ctx context.Context, counselor *models.User, appt *models.Appointment) {
	copied := *appt
	alert := notify.UrgentRequest{Counselor: counselor, Appointment: &copied}
	ctx = context.WithoutCancel(ctx)
	s.alerts.Add(1)
	go func() {
		defer s.alerts.Done()
		ctx, cancel := context.WithTimeout(ctx, urgentAlertTimeout)
		defer cancel()
		if err := s.notifier.NotifyUrgentRequest(ctx, alert); err != nil {
			s.log.Error("Failed to send urgent appointment alert",
				zap.String("appointment_id", appt.ID),
				zap.String("counselor_id", counselor.ID),
				zap.Error(err))
		}
	}()
}

// UpdateAppointmentStatus confirms, cancels, completes or marks a no-show.
func (s *AppointmentService) UpdateAppointmentStatus(ctx context.Context, actor Actor, id string, req UpdateStatusRequest) (*models.Appointment, error) {
	if actor.Role != models.RoleCounselor && !actor.IsAdmin() {
		return nil, permissionDenied("only counselors and admins can update appointment status")
	}
	if err := utils.Validate(req); err != nil {
		return nil, validationError(err)
	}

	stamp := s.timestamp()
	var (
		appt     *models.Appointment
		previous models.AppointmentStatus
	)
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if appt, err = lockAppointment(ctx, tx, id); err != nil {
			return err
		}
		if actor.Role == models.RoleCounselor && appt.CounselorID != actor.ID {
			return permissionDenied("appointment belongs to another counselor")
		}
		if appt.Status.IsTerminal() {
			return fmtValidation("appointment is already %s", appt.Status)
		}

		entry := models.StatusChange{Status: req.Status, ChangedBy: actor.ID, ChangedAt: stamp, Notes: req.Notes}
		update := store.AppointmentUpdate{
			Status:      &req.Status,
			SlotKey:     appt.SlotKeyFor(req.Status),
			StatusEntry: &entry,
			UpdatedAt:   stamp,
		}
		previous = appt.Status
		applyUpdate(appt, update)

		notification, err := newNotification(appt.StudentID, models.NotificationStatusUpdate,
			notificationParams{Appointment: appt, Status: req.Status}, stamp)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransactionFailure, err)
		}

		if err := tx.UpdateAppointment(ctx, appt.ID, update); err != nil {
			return err
		}
		switch req.Status {
		case models.StatusCompleted:
			if err := tx.IncrementMetric(ctx, appt.CounselorID, models.MetricTotalSessions); err != nil {
				return err
			}
		case models.StatusNoShow:
			if err := tx.IncrementMetric(ctx, appt.CounselorID, models.MetricNoShowCount); err != nil {
				return err
			}
		}
		return tx.InsertNotifications(ctx, []models.Notification{notification})
	})
	if err != nil {
		err = txError(err)
		s.log.Warn("Appointment status update failed",
			zap.String("appointment_id", id),
			zap.String("status", string(req.Status)),
			zap.Error(err))
		return nil, err
	}

	s.log.Info("Appointment status updated",
		zap.String("appointment_id", appt.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(appt.Status)),
		zap.String("changed_by", actor.ID))
	return appt, nil
}

// RescheduleAppointment moves an appointment to a new date and time. The new
// slot is taken as given; neither conflicts nor availability are re-checked.
func (s *AppointmentService) RescheduleAppointment(ctx context.Context, actor Actor, id string, req RescheduleRequest) (*models.Appointment, error) {
	if err := utils.Validate(req); err != nil {
		return nil, validationError(err)
	}
	now := s.now()
	if err := checkBookingDate("newDate", req.NewDate, req.NewTime, now); err != nil {
		return nil, err
	}

	stamp := models.Timestamp(now)
	status := models.StatusRescheduled
	var (
		appt             *models.Appointment
		oldDate, oldTime string
	)
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if appt, err = lockAppointment(ctx, tx, id); err != nil {
			return err
		}
		if !appt.IsParticipant(actor.ID) && !actor.IsAdmin() {
			return permissionDenied("only the appointment's participants can reschedule it")
		}

		oldDate, oldTime = appt.Date, appt.Time
		update := store.AppointmentUpdate{
			Status:  &status,
			Date:    &req.NewDate,
			Time:    &req.NewTime,
			SlotKey: nil,
			StatusEntry: &models.StatusChange{
				Status:    status,
				ChangedBy: actor.ID,
				ChangedAt: stamp,
				Notes:     req.Reason,
			},
			RescheduleEntry: &models.RescheduleEntry{
				OldDate:       oldDate,
				OldTime:       oldTime,
				NewDate:       req.NewDate,
				NewTime:       req.NewTime,
				Reason:        req.Reason,
				RescheduledBy: actor.ID,
				RescheduledAt: stamp,
			},
			UpdatedAt: stamp,
		}
		applyUpdate(appt, update)

		params := notificationParams{
			Appointment: appt,
			ActorName:   roleLabel(actor.Role),
			OldDate:     oldDate,
			OldTime:     oldTime,
		}
		var notifications []models.Notification
		for _, recipient := range []string{appt.StudentID, appt.CounselorID} {
			if recipient == actor.ID {
				continue
			}
			n, err := newNotification(recipient, models.NotificationRescheduled, params, stamp)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrTransactionFailure, err)
			}
			notifications = append(notifications, n)
		}

		if err := tx.UpdateAppointment(ctx, appt.ID, update); err != nil {
			return err
		}
		return tx.InsertNotifications(ctx, notifications)
	})
	if err != nil {
		err = txError(err)
		s.log.Warn("Appointment reschedule failed", zap.String("appointment_id", id), zap.Error(err))
		return nil, err
	}

	s.log.Info("Appointment rescheduled",
		zap.String("appointment_id", appt.ID),
		zap.String("from", oldDate+" "+oldTime),
		zap.String("to", appt.Date+" "+appt.Time),
		zap.String("rescheduled_by", actor.ID))
	return appt, nil
}

// GetAppointment returns one appointment to a participant or an admin.
func (s *AppointmentService) GetAppointment(ctx context.Context, actor Actor, id string) (*models.Appointment, error) {
	appt, err := s.store.FindAppointmentByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "appointment")
	}
	if !appt.IsParticipant(actor.ID) && !actor.IsAdmin() {
		return nil, permissionDenied("not a participant of this appointment")
	}
	return appt, nil
}

// ListAppointments returns the caller's appointments ordered by date and time.
// Admins see every appointment.
func (s *AppointmentService) ListAppointments(ctx context.Context, actor Actor, req ListAppointmentsRequest) ([]models.Appointment, error) {
	if err := utils.Validate(req); err != nil {
		return nil, validationError(err)
	}

	filter := store.AppointmentFilter{Status: req.Status}
	switch actor.Role {
	case models.RoleStudent:
		filter.StudentID = actor.ID
	case models.RoleCounselor:
		filter.CounselorID = actor.ID
	case models.RoleAdmin:
	default:
		return nil, permissionDenied("unknown role")
	}

	appointments, err := s.store.ListAppointments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: listing appointments: %v", ErrTransactionFailure, err)
	}
	return appointments, nil
}

// lockAppointment loads the appointment through tx. Status changes are decided
// from this copy so a concurrent writer cannot invalidate them.
func lockAppointment(ctx context.Context, tx store.Tx, id string) (*models.Appointment, error) {
	appt, err := tx.FindAppointmentForUpdate(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("appointment")
	}
	return appt, err
}

// applyUpdate mirrors store.AppointmentUpdate on the in-memory copy returned to callers.
func applyUpdate(appt *models.Appointment, u store.AppointmentUpdate) {
	if u.Status != nil {
		appt.Status = *u.Status
	}
	if u.Date != nil {
		appt.Date = *u.Date
	}
	if u.Time != nil {
		appt.Time = *u.Time
	}
	appt.SlotKey = u.SlotKey
	if u.StatusEntry != nil {
		appt.StatusHistory = append(appt.StatusHistory, *u.StatusEntry)
	}
	if u.RescheduleEntry != nil {
		appt.RescheduleHistory = append(appt.RescheduleHistory, *u.RescheduleEntry)
	}
	appt.UpdatedAt = u.UpdatedAt
}

func roleLabel(role models.Role) string {
	switch role {
	case models.RoleStudent:
		return "The student"
	case models.RoleCounselor:
		return "Your counselor"
	}
	return "An administrator"
}
