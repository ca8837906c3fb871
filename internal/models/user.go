package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCounselor Role = "counselor"
	RoleStudent   Role = "student"
)

// Weekday names used by availability slots, indexed like time.Weekday.
var Weekdays = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// AvailabilitySlot is one weekly window in which a counselor takes sessions.
type AvailabilitySlot struct {
	DayOfWeek   string `bson:"dayOfWeek" json:"dayOfWeek" validate:"required,weekday"`
	StartTime   string `bson:"startTime" json:"startTime" validate:"required,hhmm"`
	EndTime     string `bson:"endTime" json:"endTime" validate:"required,hhmm"`
	IsAvailable bool   `bson:"isAvailable" json:"isAvailable"`
}

// StudentProfile holds academic information for students.
type StudentProfile struct {
	StudentNumber string `bson:"studentNumber" json:"studentNumber"`
	Program       string `bson:"program" json:"program"`
	YearOfStudy   int    `bson:"yearOfStudy" json:"yearOfStudy"`
}

// CounselorProfile holds the professional data of a counselor.
type CounselorProfile struct {
	Specializations  []string           `bson:"specializations" json:"specializations"`
	MaxDailySessions int                `bson:"maxDailySessions" json:"maxDailySessions"`
	Availability     []AvailabilitySlot `bson:"availability" json:"availability" validate:"max=50,dive"`
}

// AppointmentSummary is the compact record of an appointment kept on the student.
type AppointmentSummary struct {
	AppointmentID string            `bson:"appointmentId" json:"appointmentId"`
	CounselorID   string            `bson:"counselorId" json:"counselorId"`
	Date          string            `bson:"date" json:"date"`
	Time          string            `bson:"time" json:"time"`
	Status        AppointmentStatus `bson:"status" json:"status"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt"`
}

// PerformanceMetrics are counters maintained on counselor accounts.
type PerformanceMetrics struct {
	TotalSessions int `bson:"totalSessions" json:"totalSessions"`
	NoShowCount   int `bson:"noShowCount" json:"noShowCount"`
}

// Metric names a counter in PerformanceMetrics.
type Metric string

const (
	MetricTotalSessions Metric = "totalSessions"
	MetricNoShowCount   Metric = "noShowCount"
)

// User represents a user in the system
type User struct {
	BaseModel          `bson:",inline"`
	Email              string               `gorm:"uniqueIndex;size:255;not null" bson:"email" json:"email"`
	Password           string               `gorm:"size:255;not null" bson:"password" json:"-"` // Never send password in JSON
	FirstName          string               `gorm:"size:100" bson:"firstName" json:"firstName"`
	LastName           string               `gorm:"size:100" bson:"lastName" json:"lastName"`
	Role               Role                 `gorm:"size:20;index;default:'student'" bson:"role" json:"role"`
	StudentProfile     *StudentProfile      `gorm:"serializer:json;type:text" bson:"studentProfile,omitempty" json:"studentProfile,omitempty"`
	CounselorProfile   *CounselorProfile    `gorm:"serializer:json;type:text" bson:"counselorProfile,omitempty" json:"counselorProfile,omitempty"`
	AppointmentHistory []AppointmentSummary `gorm:"serializer:json;type:text" bson:"appointmentHistory,omitempty" json:"appointmentHistory,omitempty"`
	PerformanceMetrics PerformanceMetrics   `gorm:"embedded;embeddedPrefix:metrics_" bson:"performanceMetrics" json:"performanceMetrics"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID                 string              `json:"id"`
	Email              string              `json:"email"`
	FirstName          string              `json:"firstName"`
	LastName           string              `json:"lastName"`
	Role               Role                `json:"role"`
	StudentProfile     *StudentProfile     `json:"studentProfile,omitempty"`
	CounselorProfile   *CounselorProfile   `json:"counselorProfile,omitempty"`
	PerformanceMetrics *PerformanceMetrics `json:"performanceMetrics,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Availability returns the counselor's weekly slots, or nil for other roles.
func (u *User) Availability() []AvailabilitySlot {
	if u.CounselorProfile == nil {
		return nil
	}
	return u.CounselorProfile.Availability
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	s := UserSanitized{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Role:             u.Role,
		StudentProfile:   u.StudentProfile,
		CounselorProfile: u.CounselorProfile,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
	if u.Role == RoleCounselor {
		metrics := u.PerformanceMetrics
		s.PerformanceMetrics = &metrics
	}
	return s
}

// FullName returns "First Last".
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
