package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/dsbe-portal-api/internal/models"
)

// VerificationRequestRepository persists certificate verification requests.
type VerificationRequestRepository interface {
	Create(ctx context.Context, request *models.VerificationRequest) error
	List(ctx context.Context, filter SubmissionFilter) ([]models.VerificationRequest, int64, error)
	GetByReference(ctx context.Context, reference string) (models.VerificationRequest, error)
	UpdateStatus(ctx context.Context, reference, status string) (models.VerificationRequest, error)
	Delete(ctx context.Context, reference string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type verificationRequestRepository struct {
	db *gorm.DB
}

// NewVerificationRequestRepository constructs the verification request repository.
func NewVerificationRequestRepository(db *gorm.DB) VerificationRequestRepository {
	return &verificationRequestRepository{db: db}
}

func (r *verificationRequestRepository) Create(ctx context.Context, request *models.VerificationRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *verificationRequestRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.VerificationRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.VerificationRequest{})

	if filter.Search != "" {
		like := containsPattern(strings.ToLower(filter.Search))
		query = query.Where(
			strings.Join([]string{
				likeClause("LOWER(candidate_name)"),
				likeClause("LOWER(roll_no)"),
				likeClause("LOWER(org_name)"),
				likeClause("LOWER(reference_id)"),
			}, " OR "),
			like, like, like, like,
		)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.Class != "" {
		query = query.Where("class_selected = ?", filter.Class)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query.Order("submitted_at DESC").Order("id DESC"), filter.Page, filter.PageSize)

	var requests []models.VerificationRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *verificationRequestRepository) GetByReference(ctx context.Context, reference string) (models.VerificationRequest, error) {
	var request models.VerificationRequest
	if err := r.db.WithContext(ctx).Where("reference_id = ?", reference).First(&request).Error; err != nil {
		return models.VerificationRequest{}, err
	}
	return request, nil
}

func (r *verificationRequestRepository) UpdateStatus(ctx context.Context, reference, status string) (models.VerificationRequest, error) {
	update := r.db.WithContext(ctx).
		Model(&models.VerificationRequest{}).
		Where("reference_id = ?", reference).
		UpdateColumns(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
	if update.Error != nil {
		return models.VerificationRequest{}, update.Error
	}
	if update.RowsAffected == 0 {
		return models.VerificationRequest{}, gorm.ErrRecordNotFound
	}

	return r.GetByReference(ctx, reference)
}

func (r *verificationRequestRepository) Delete(ctx context.Context, reference string) error {
	result := r.db.WithContext(ctx).Where("reference_id = ?", reference).Delete(&models.VerificationRequest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *verificationRequestRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(r.db.WithContext(ctx).Model(&models.VerificationRequest{}))
}
