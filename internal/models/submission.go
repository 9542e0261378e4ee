package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Form submission statuses.
const (
	FormStatusPending  = "Pending"
	FormStatusApproved = "Approved"
	FormStatusRejected = "Rejected"
)

// Verification request statuses.
const (
	VerificationStatusPending  = "Pending"
	VerificationStatusVerified = "Verified"
	VerificationStatusRejected = "Rejected"
)

// FormTypeStudentApplication labels submissions made through the online application form.
const FormTypeStudentApplication = "Student Application"

// FormSubmission is an application form filed by a student or guardian.
type FormSubmission struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	ReferenceID   string    `gorm:"size:64;uniqueIndex;not null" json:"id"`
	StudentName   string    `gorm:"size:160;not null" json:"student_name"`
	GuardianName  string    `gorm:"size:160;not null" json:"guardian_name"`
	Email         string    `gorm:"size:160;not null" json:"email"`
	Mobile        string    `gorm:"size:16;not null" json:"mobile"`
	FormType      string    `gorm:"size:64;not null" json:"form_type"`
	ClassSelected string    `gorm:"size:64;index;not null" json:"class_selected"`
	DOB           string    `gorm:"column:dob;size:10" json:"dob"`
	Gender        string    `gorm:"size:16" json:"gender"`
	Category      string    `gorm:"size:32" json:"category"`
	Nationality   string    `gorm:"size:64" json:"nationality"`
	Address       string    `gorm:"type:text" json:"address"`
	City          string    `gorm:"size:96" json:"city"`
	State         string    `gorm:"size:96" json:"state"`
	Pincode       string    `gorm:"size:6" json:"pincode"`
	Stream        string    `gorm:"size:32" json:"stream"`
	SubjectsRaw   string    `gorm:"column:subjects;type:text" json:"-"`
	Subjects      []string  `gorm:"-" json:"subjects"`
	Status        string    `gorm:"size:16;index;not null" json:"status"`
	SubmittedAt   time.Time `gorm:"index" json:"submission_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeSave flattens the subject list into its column.
func (f *FormSubmission) BeforeSave(tx *gorm.DB) error {
	f.SubjectsRaw = encodeList(f.Subjects)
	return nil
}

// AfterFind hydrates the subject list after retrieval.
func (f *FormSubmission) AfterFind(tx *gorm.DB) error {
	f.Subjects = decodeList(f.SubjectsRaw)
	return nil
}

// VerificationRequest asks the board to confirm a candidate's certificate.
type VerificationRequest struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	ReferenceID   string    `gorm:"size:64;uniqueIndex;not null" json:"id"`
	CandidateName string    `gorm:"size:160;not null" json:"candidate_name"`
	RollNo        string    `gorm:"size:32;index;not null" json:"roll_no"`
	ClassSelected string    `gorm:"size:16;not null" json:"class_selected"`
	Year          string    `gorm:"size:4;not null" json:"year"`
	CandidateDOB  string    `gorm:"column:candidate_dob;size:10" json:"candidate_dob"`
	Email         string    `gorm:"size:160;not null" json:"email"`
	Mobile        string    `gorm:"size:16;not null" json:"mobile"`
	Purpose       string    `gorm:"size:255;not null" json:"purpose"`
	RequestorType string    `gorm:"size:32" json:"requestor_type"`
	OrgName       string    `gorm:"size:255" json:"org_name"`
	OrgAddress    string    `gorm:"type:text" json:"org_address"`
	ContactPerson string    `gorm:"size:160" json:"contact_person"`
	Status        string    `gorm:"size:16;index;not null" json:"status"`
	SubmittedAt   time.Time `gorm:"index" json:"submission_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func encodeList(items []string) string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return ""
	}
	return "|" + strings.Join(cleaned, "|") + "|"
}

func decodeList(raw string) []string {
	raw = strings.Trim(raw, "|")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		items = append(items, trimmed)
	}
	return items
}
