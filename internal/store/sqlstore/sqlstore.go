// Package sqlstore implements store.Store with gorm on MySQL or PostgreSQL.
// Nested documents (history lists, profiles) are kept as JSON columns.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open connects with the named driver ("mysql" or "postgres") and migrates the schema.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	s := New(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// New wraps an open gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate auto-migrates the tables. The unique index on appointments.slot_key
// allows many NULLs, so only slot-holding rows take part in it.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Appointment{},
		&models.Notification{},
		&models.SessionNotes{},
	)
}

func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &txn{db: tx})
	})
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return mapError(s.db.WithContext(ctx).Create(user).Error)
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	users := make([]models.User, 0)
	query := s.db.WithContext(ctx).Order("last_name asc, first_name asc, id asc")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, id, firstName, lastName string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
		"updated_at": models.Timestamp(time.Now()),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetAvailability rewrites the availability list inside the counselor profile.
func (s *Store) SetAvailability(ctx context.Context, counselorID string, slots []models.AvailabilitySlot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, counselorID)
		if err != nil {
			return err
		}
		if user.Role != models.RoleCounselor {
			return store.ErrNotFound
		}
		if user.CounselorProfile == nil {
			user.CounselorProfile = &models.CounselorProfile{}
		}
		user.CounselorProfile.Availability = slots
		user.UpdatedAt = models.Timestamp(time.Now())
		return tx.Save(user).Error
	})
}

// ---- appointments ----

func (s *Store) FindAppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return &appt, nil
}

func (s *Store) HasActiveAppointment(ctx context.Context, counselorID, date, slotTime string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("counselor_id = ? AND date = ? AND time = ? AND status IN ?",
			counselorID, date, slotTime,
			[]models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListAppointments(ctx context.Context, filter store.AppointmentFilter) ([]models.Appointment, error) {
	appointments := make([]models.Appointment, 0)
	query := s.db.WithContext(ctx).Order("date asc, time asc, id asc")
	if filter.StudentID != "" {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.CounselorID != "" {
		query = query.Where("counselor_id = ?", filter.CounselorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// ---- notifications & notes ----

func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)
	query := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc")
	if unreadOnly {
		// map conditions get their column quoted; READ is reserved in MySQL
		query = query.Where(map[string]interface{}{"read": false})
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero affected rows for an already read notification.
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return store.ErrNotFound
		}
	}
	return nil
}

func (s *Store) FindSessionNotes(ctx context.Context, appointmentID string) (*models.SessionNotes, error) {
	var notes models.SessionNotes
	if err := s.db.WithContext(ctx).Where("appointment_id = ?", appointmentID).First(&notes).Error; err != nil {
		return nil, mapError(err)
	}
	return &notes, nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}
