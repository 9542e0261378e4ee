package models

import "time"

// Import outcomes.
const (
	ImportStatusApplied  = "applied"
	ImportStatusRejected = "rejected"
)

// ImportRecord stores metadata about an uploaded CSV dataset.
type ImportRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Kind       string    `gorm:"size:32;index;not null" json:"kind"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	SizeBytes  int64     `gorm:"not null" json:"size_bytes"`
	Checksum   string    `gorm:"size:128;index" json:"checksum"`
	RowCount   int       `gorm:"not null" json:"row_count"`
	ErrorCount int       `gorm:"not null" json:"error_count"`
	ArchiveURL string    `gorm:"size:512" json:"archive_url"`
	Status     string    `gorm:"size:16;not null" json:"status"`
	Actor      string    `gorm:"size:160" json:"actor"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// All lists every persisted model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&FormSubmission{},
		&VerificationRequest{},
		&ApplicationStatus{},
		&StudentResult{},
		&VerificationData{},
		&User{},
		&ActivityLog{},
		&ImportRecord{},
	}
}
