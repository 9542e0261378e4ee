package models

import (
	"time"

	"gorm.io/datatypes"
)

// Application statuses published through the CSV feed.
const (
	ApplicationStatusPending  = "Pending"
	ApplicationStatusAccepted = "Accepted"
	ApplicationStatusRejected = "Rejected"
)

// Examination outcomes shared by results and verification data.
const (
	OutcomePass = "Pass"
	OutcomeFail = "Fail"
)

// ApplicationStatus is a row of the admissions status sheet.
type ApplicationStatus struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	ApplicationID string    `gorm:"size:64;index;not null" json:"application_id"`
	StudentName   string    `gorm:"size:160;not null" json:"student_name"`
	DOB           string    `gorm:"column:dob;size:10;not null" json:"dob"`
	ClassApplied  string    `gorm:"size:64;not null" json:"class_applied"`
	Status        string    `gorm:"size:16;not null" json:"status"`
	Remarks       string    `gorm:"type:text" json:"remarks"`
	CreatedAt     time.Time `json:"-"`
}

// SubjectMark is a per-subject line on a marksheet.
type SubjectMark struct {
	Name      string `json:"name"`
	Theory    int    `json:"theory"`
	Practical int    `json:"practical"`
	Total     int    `json:"total"`
	Grade     string `json:"grade"`
}

// StudentResult is a published examination result.
type StudentResult struct {
	ID            uint                             `gorm:"primaryKey" json:"-"`
	RollNo        string                           `gorm:"size:32;index;not null" json:"roll_no"`
	StudentName   string                           `gorm:"size:160;not null" json:"student_name"`
	DOB           string                           `gorm:"column:dob;size:10;not null" json:"dob"`
	ClassSelected string                           `gorm:"size:64;not null" json:"class_selected"`
	Year          string                           `gorm:"size:4;not null" json:"year"`
	Subjects      datatypes.JSONSlice[SubjectMark] `json:"subjects"`
	TotalMarks    int                              `gorm:"not null" json:"total_marks"`
	Percentage    float64                          `gorm:"index;not null" json:"percentage"`
	Result        string                           `gorm:"size:8;not null" json:"result"`
	Division      string                           `gorm:"size:64;not null" json:"division"`
	CreatedAt     time.Time                        `json:"-"`
}

// VerificationData is a certificate record used for instant verification.
type VerificationData struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	RollNo        string    `gorm:"size:32;index;not null" json:"roll_no"`
	StudentName   string    `gorm:"size:160;not null" json:"student_name"`
	ClassSelected string    `gorm:"size:16;not null" json:"class_selected"`
	Year          string    `gorm:"size:4;not null" json:"year"`
	DOB           string    `gorm:"column:dob;size:10;not null" json:"dob"`
	Status        string    `gorm:"size:8;not null" json:"status"`
	CreatedAt     time.Time `json:"-"`
}

// TableName keeps the plural form readable.
func (VerificationData) TableName() string {
	return "verification_data"
}
