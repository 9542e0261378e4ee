package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/dsbe-portal-api/internal/models"
)

const replaceBatchSize = 200

// DatasetFilter narrows listings of uploaded datasets.
type DatasetFilter struct {
	Search   string
	Page     int
	PageSize int
}

// ApplicationStatusRepository stores the admissions status sheet.
type ApplicationStatusRepository interface {
	ReplaceAll(ctx context.Context, rows []models.ApplicationStatus) error
	List(ctx context.Context, filter DatasetFilter) ([]models.ApplicationStatus, int64, error)
	Search(ctx context.Context, applicationID, dob string) (models.ApplicationStatus, error)
	Count(ctx context.Context) (int64, error)
}

// StudentResultRepository stores published examination results.
type StudentResultRepository interface {
	ReplaceAll(ctx context.Context, rows []models.StudentResult) error
	List(ctx context.Context, filter DatasetFilter) ([]models.StudentResult, int64, error)
	Search(ctx context.Context, rollNo, dob string) (models.StudentResult, error)
	Toppers(ctx context.Context, limit int) ([]models.StudentResult, error)
	Count(ctx context.Context) (int64, error)
}

// VerificationDataRepository stores certificate records for instant verification.
type VerificationDataRepository interface {
	ReplaceAll(ctx context.Context, rows []models.VerificationData) error
	List(ctx context.Context, filter DatasetFilter) ([]models.VerificationData, int64, error)
	Search(ctx context.Context, rollNo, dob string) (models.VerificationData, error)
	Count(ctx context.Context) (int64, error)
}

// replaceAll swaps the whole table contents inside a single transaction.
func replaceAll[T any](ctx context.Context, db *gorm.DB, rows []T) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model T
		if err := tx.Where("1 = 1").Delete(&model).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, replaceBatchSize).Error
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeClause matches column against a pattern built by containsPattern.
func likeClause(column string) string {
	return column + ` LIKE ? ESCAPE '\'`
}

// containsPattern turns free search text into a LIKE pattern in which % and _
// match themselves.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

func listDataset[T any](ctx context.Context, db *gorm.DB, filter DatasetFilter, searchColumns ...string) ([]T, int64, error) {
	var model T
	query := db.WithContext(ctx).Model(&model)

	if filter.Search != "" && len(searchColumns) > 0 {
		like := containsPattern(strings.ToLower(filter.Search))
		clauses := make([]string, len(searchColumns))
		args := make([]interface{}, len(searchColumns))
		for idx, column := range searchColumns {
			clauses[idx] = likeClause("LOWER(" + column + ")")
			args[idx] = like
		}
		query = query.Where(strings.Join(clauses, " OR "), args...)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []T
	if err := paginate(query.Order("id ASC"), filter.Page, filter.PageSize).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// searchDataset returns the first row whose key matches case-insensitively
// and whose date of birth matches exactly.
func searchDataset[T any](ctx context.Context, db *gorm.DB, keyColumn, key, dob string) (T, error) {
	var item T
	err := db.WithContext(ctx).
		Where("LOWER("+keyColumn+") = ?", strings.ToLower(strings.TrimSpace(key))).
		Where("dob = ?", strings.TrimSpace(dob)).
		Order("id ASC").
		First(&item).Error
	return item, err
}

func countDataset[T any](ctx context.Context, db *gorm.DB) (int64, error) {
	var (
		model T
		total int64
	)
	err := db.WithContext(ctx).Model(&model).Count(&total).Error
	return total, err
}

type applicationStatusRepository struct {
	db *gorm.DB
}

// NewApplicationStatusRepository constructs the admissions status repository.
func NewApplicationStatusRepository(db *gorm.DB) ApplicationStatusRepository {
	return &applicationStatusRepository{db: db}
}

func (r *applicationStatusRepository) ReplaceAll(ctx context.Context, rows []models.ApplicationStatus) error {
	return replaceAll(ctx, r.db, rows)
}

func (r *applicationStatusRepository) List(ctx context.Context, filter DatasetFilter) ([]models.ApplicationStatus, int64, error) {
	return listDataset[models.ApplicationStatus](ctx, r.db, filter, "application_id", "student_name")
}

func (r *applicationStatusRepository) Search(ctx context.Context, applicationID, dob string) (models.ApplicationStatus, error) {
	return searchDataset[models.ApplicationStatus](ctx, r.db, "application_id", applicationID, dob)
}

func (r *applicationStatusRepository) Count(ctx context.Context) (int64, error) {
	return countDataset[models.ApplicationStatus](ctx, r.db)
}

type studentResultRepository struct {
	db *gorm.DB
}

// NewStudentResultRepository constructs the results repository.
func NewStudentResultRepository(db *gorm.DB) StudentResultRepository {
	return &studentResultRepository{db: db}
}

func (r *studentResultRepository) ReplaceAll(ctx context.Context, rows []models.StudentResult) error {
	return replaceAll(ctx, r.db, rows)
}

func (r *studentResultRepository) List(ctx context.Context, filter DatasetFilter) ([]models.StudentResult, int64, error) {
	return listDataset[models.StudentResult](ctx, r.db, filter, "roll_no", "student_name")
}

func (r *studentResultRepository) Search(ctx context.Context, rollNo, dob string) (models.StudentResult, error) {
	return searchDataset[models.StudentResult](ctx, r.db, "roll_no", rollNo, dob)
}

func (r *studentResultRepository) Toppers(ctx context.Context, limit int) ([]models.StudentResult, error) {
	query := r.db.WithContext(ctx).
		Where("result = ?", models.OutcomePass).
		Order("percentage DESC").
		Order("total_marks DESC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []models.StudentResult
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studentResultRepository) Count(ctx context.Context) (int64, error) {
	return countDataset[models.StudentResult](ctx, r.db)
}

type verificationDataRepository struct {
	db *gorm.DB
}

// NewVerificationDataRepository constructs the certificate record repository.
func NewVerificationDataRepository(db *gorm.DB) VerificationDataRepository {
	return &verificationDataRepository{db: db}
}

func (r *verificationDataRepository) ReplaceAll(ctx context.Context, rows []models.VerificationData) error {
	return replaceAll(ctx, r.db, rows)
}

func (r *verificationDataRepository) List(ctx context.Context, filter DatasetFilter) ([]models.VerificationData, int64, error) {
	return listDataset[models.VerificationData](ctx, r.db, filter, "roll_no", "student_name")
}

func (r *verificationDataRepository) Search(ctx context.Context, rollNo, dob string) (models.VerificationData, error) {
	return searchDataset[models.VerificationData](ctx, r.db, "roll_no", rollNo, dob)
}

func (r *verificationDataRepository) Count(ctx context.Context) (int64, error) {
	return countDataset[models.VerificationData](ctx, r.db)
}
