package sqlstore

import (
	"context"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// txn applies writes on the gorm transaction handle. Rows carrying JSON
// history lists are locked FOR UPDATE before they are rewritten.
type txn struct {
	db *gorm.DB
}

func (t *txn) FindAppointmentForUpdate(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&appt, "id = ?", id).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &appt, nil
}

func (t *txn) InsertAppointment(ctx context.Context, appt *models.Appointment) error {
	return mapError(t.db.WithContext(ctx).Create(appt).Error)
}

func (t *txn) UpdateAppointment(ctx context.Context, id string, u store.AppointmentUpdate) error {
	appt, err := t.FindAppointmentForUpdate(ctx, id)
	if err != nil {
		return err
	}

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

	return mapError(t.db.WithContext(ctx).Save(appt).Error)
}

func (t *txn) AppendAppointmentSummary(ctx context.Context, studentID string, summary models.AppointmentSummary) error {
	user, err := lockUser(t.db.WithContext(ctx), studentID)
	if err != nil {
		return err
	}
	user.AppointmentHistory = append(user.AppointmentHistory, summary)
	user.UpdatedAt = summary.CreatedAt
	return t.db.WithContext(ctx).Save(user).Error
}

func (t *txn) IncrementMetric(ctx context.Context, counselorID string, metric models.Metric) error {
	var column string
	switch metric {
	case models.MetricTotalSessions:
		column = "metrics_total_sessions"
	case models.MetricNoShowCount:
		column = "metrics_no_show_count"
	default:
		return gorm.ErrInvalidField
	}

	res := t.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND role = ?", counselorID, models.RoleCounselor).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *txn) InsertNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return mapError(t.db.WithContext(ctx).Create(&notifications).Error)
}

func (t *txn) InsertSessionNotes(ctx context.Context, notes *models.SessionNotes) error {
	return mapError(t.db.WithContext(ctx).Create(notes).Error)
}

func lockUser(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}
