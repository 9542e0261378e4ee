package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/dsbe-portal-api/internal/models"
)

// ImportFilter narrows the upload history.
type ImportFilter struct {
	Kind     string
	Status   string
	Page     int
	PageSize int
}

// ImportRepository records every CSV upload attempt.
type ImportRepository interface {
	Create(ctx context.Context, record *models.ImportRecord) error
	List(ctx context.Context, filter ImportFilter) ([]models.ImportRecord, int64, error)
	Latest(ctx context.Context, kind string) (models.ImportRecord, error)
}

type importRepository struct {
	db *gorm.DB
}

// NewImportRepository constructs the upload history repository.
func NewImportRepository(db *gorm.DB) ImportRepository {
	return &importRepository{db: db}
}

func (r *importRepository) Create(ctx context.Context, record *models.ImportRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *importRepository) List(ctx context.Context, filter ImportFilter) ([]models.ImportRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ImportRecord{})

	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.ImportRecord
	if err := paginate(query.Order("created_at DESC").Order("id DESC"), filter.Page, filter.PageSize).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// Latest returns the most recent applied import of the given kind.
func (r *importRepository) Latest(ctx context.Context, kind string) (models.ImportRecord, error) {
	var record models.ImportRecord
	err := r.db.WithContext(ctx).
		Where("kind = ? AND status = ?", kind, models.ImportStatusApplied).
		Order("created_at DESC").
		Order("id DESC").
		First(&record).Error
	if err != nil {
		return models.ImportRecord{}, err
	}
	return record, nil
}
