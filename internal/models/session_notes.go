package models

import (
	"time"
)

// RiskLevel is the counselor's assessment recorded with session notes.
type RiskLevel string

const (
	RiskNone     RiskLevel = "none"
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// SessionNotes documents a completed appointment. There is at most one per appointment.
type SessionNotes struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	AppointmentID    string    `gorm:"size:36;uniqueIndex" bson:"appointmentId" json:"appointmentId"`
	CounselorID      string    `gorm:"size:36;index" bson:"counselorId" json:"counselorId"`
	StudentID        string    `gorm:"size:36;index" bson:"studentId" json:"studentId"`
	Summary          string    `gorm:"type:text;not null" bson:"summary" json:"summary"`
	Observations     string    `gorm:"type:text" bson:"observations,omitempty" json:"observations,omitempty"`
	Recommendations  string    `gorm:"type:text" bson:"recommendations,omitempty" json:"recommendations,omitempty"`
	RiskLevel        RiskLevel `gorm:"size:20" bson:"riskLevel" json:"riskLevel"`
	FollowUpRequired bool      `gorm:"default:false" bson:"followUpRequired" json:"followUpRequired"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
}

// TableName keeps the SQL table aligned with the document collection name.
func (SessionNotes) TableName() string {
	return "session_notes"
}
