package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/dsbe-portal-api/internal/models"
)

// SubmissionFilter narrows admin listings of forms and verification requests.
type SubmissionFilter struct {
	Search   string
	Status   string
	Class    string
	Page     int
	PageSize int
}

// FormSubmissionRepository persists application form submissions.
type FormSubmissionRepository interface {
	Create(ctx context.Context, submission *models.FormSubmission) error
	List(ctx context.Context, filter SubmissionFilter) ([]models.FormSubmission, int64, error)
	GetByReference(ctx context.Context, reference string) (models.FormSubmission, error)
	UpdateStatus(ctx context.Context, reference, status string) (models.FormSubmission, error)
	Delete(ctx context.Context, reference string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type formSubmissionRepository struct {
	db *gorm.DB
}

// NewFormSubmissionRepository constructs a repository backed by GORM.
func NewFormSubmissionRepository(db *gorm.DB) FormSubmissionRepository {
	return &formSubmissionRepository{db: db}
}

func (r *formSubmissionRepository) Create(ctx context.Context, submission *models.FormSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *formSubmissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.FormSubmission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FormSubmission{})

	if filter.Search != "" {
		like := containsPattern(strings.ToLower(filter.Search))
		query = query.Where(
			likeClause("LOWER(student_name)")+" OR "+likeClause("LOWER(email)")+" OR "+likeClause("LOWER(reference_id)"),
			like, like, like,
		)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.Class != "" {
		query = query.Where(likeClause("class_selected"), containsPattern(filter.Class))
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query.Order("submitted_at DESC").Order("id DESC"), filter.Page, filter.PageSize)

	var submissions []models.FormSubmission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *formSubmissionRepository) GetByReference(ctx context.Context, reference string) (models.FormSubmission, error) {
	var submission models.FormSubmission
	if err := r.db.WithContext(ctx).Where("reference_id = ?", reference).First(&submission).Error; err != nil {
		return models.FormSubmission{}, err
	}
	return submission, nil
}

func (r *formSubmissionRepository) UpdateStatus(ctx context.Context, reference, status string) (models.FormSubmission, error) {
	update := r.db.WithContext(ctx).
		Model(&models.FormSubmission{}).
		Where("reference_id = ?", reference).
		UpdateColumns(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
	if update.Error != nil {
		return models.FormSubmission{}, update.Error
	}
	if update.RowsAffected == 0 {
		return models.FormSubmission{}, gorm.ErrRecordNotFound
	}

	return r.GetByReference(ctx, reference)
}

func (r *formSubmissionRepository) Delete(ctx context.Context, reference string) error {
	result := r.db.WithContext(ctx).Where("reference_id = ?", reference).Delete(&models.FormSubmission{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *formSubmissionRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(r.db.WithContext(ctx).Model(&models.FormSubmission{}))
}

type statusCount struct {
	Status string
	Total  int64
}

func countByStatus(query *gorm.DB) (map[string]int64, error) {
	var rows []statusCount
	if err := query.Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize
	return query.Offset(offset).Limit(pageSize)
}
