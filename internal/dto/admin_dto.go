package dto

import (
	"time"

	"github.com/noah-isme/dsbe-portal-api/internal/csvimport"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// AdminListRequest defines filters shared by admin listings.
type AdminListRequest struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	Class    string
}

// AdminFormListResponse wraps a paginated list of form submissions.
type AdminFormListResponse struct {
	Items      []FormSubmissionResponse `json:"items"`
	Pagination PaginationMeta           `json:"pagination"`
}

// AdminVerificationListResponse wraps a paginated list of verification requests.
type AdminVerificationListResponse struct {
	Items      []VerificationRequestResponse `json:"items"`
	Pagination PaginationMeta                `json:"pagination"`
}

// StatusUpdateRequest changes the review status of a submission.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// DashboardCounts groups the totals shown on the admin overview.
type DashboardCounts struct {
	Forms               map[string]int64      `json:"forms"`
	FormsTotal          int64                 `json:"forms_total"`
	Verifications       map[string]int64      `json:"verifications"`
	VerificationsTotal  int64                 `json:"verifications_total"`
	Applications        int64                 `json:"applications"`
	Results             int64                 `json:"results"`
	VerificationRecords int64                 `json:"verification_records"`
	RegisteredUsers     int64                 `json:"registered_users"`
	LastImports         map[string]*time.Time `json:"last_imports"`
}

// DashboardResponse is returned by the admin overview endpoint.
type DashboardResponse struct {
	Counts      DashboardCounts `json:"counts"`
	GeneratedAt time.Time       `json:"generated_at"`
	CacheHit    bool            `json:"cache_hit"`
}

// DatasetListResponse wraps a page of rows from an uploaded dataset.
type DatasetListResponse struct {
	Kind       string         `json:"kind"`
	Items      interface{}    `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// ImportUpload describes an uploaded CSV sheet.
type ImportUpload struct {
	FileName string
	Size     int64
	Content  []byte
	Actor    string
}

// ImportResponse reports an applied upload.
type ImportResponse struct {
	ImportID   uint   `json:"import_id"`
	Kind       string `json:"kind"`
	FileName   string `json:"file_name"`
	RowCount   int    `json:"row_count"`
	Checksum   string `json:"checksum"`
	ArchiveURL string `json:"archive_url,omitempty"`
	Message    string `json:"message"`
}

// ImportErrorResponse carries the validation report of a rejected upload.
type ImportErrorResponse struct {
	Kind   string               `json:"kind"`
	Errors []csvimport.RowError `json:"errors"`
}

// ImportRecordResponse is an entry of the upload history.
type ImportRecordResponse struct {
	ID         uint      `json:"id"`
	Kind       string    `json:"kind"`
	FileName   string    `json:"file_name"`
	SizeBytes  int64     `json:"size_bytes"`
	Checksum   string    `json:"checksum"`
	RowCount   int       `json:"row_count"`
	ErrorCount int       `json:"error_count"`
	ArchiveURL string    `json:"archive_url,omitempty"`
	Status     string    `json:"status"`
	Actor      string    `json:"actor"`
	CreatedAt  time.Time `json:"created_at"`
}

// ImportHistoryResponse wraps a page of upload history.
type ImportHistoryResponse struct {
	Items      []ImportRecordResponse `json:"items"`
	Pagination PaginationMeta         `json:"pagination"`
}

// ActivityResponse is an audit trail entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	Actor      string                 `json:"actor"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityRef  string                 `json:"entity_ref"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListResponse wraps a page of audit entries.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// ExportFile is a generated CSV download.
type ExportFile struct {
	FileName string
	Content  []byte
}

// FeedEvent is pushed to admin live feed subscribers.
type FeedEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	EntityRef string                 `json:"entity_ref,omitempty"`
	Summary   string                 `json:"summary"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// ActivityListRequest filters the audit trail.
type ActivityListRequest struct {
	Page       int
	PageSize   int
	Actor      string
	Action     string
	EntityType string
}

// DatasetListRequest pages through an uploaded dataset.
type DatasetListRequest struct {
	Page     int
	PageSize int
	Search   string
}

// ImportHistoryRequest filters the upload history.
type ImportHistoryRequest struct {
	Page     int
	PageSize int
	Kind     string
	Status   string
}
