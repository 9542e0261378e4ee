package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/dsbe-portal-api/internal/csvimport"
	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/models"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
)

const (
	dashboardCachePrefix = "admin:dashboard:"
	dashboardCacheKey    = dashboardCachePrefix + "v1"
)

var (
	// ErrFormNotFound indicates the form submission does not exist.
	ErrFormNotFound = errors.New("form submission not found")
	// ErrVerificationNotFound indicates the verification request does not exist.
	ErrVerificationNotFound = errors.New("verification request not found")
	// ErrInvalidStatus indicates the requested status is not part of the entity's enum.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrNothingToExport indicates the collection is empty.
	ErrNothingToExport = errors.New("no data to download")
)

var (
	formStatuses         = []string{models.FormStatusPending, models.FormStatusApproved, models.FormStatusRejected}
	verificationStatuses = []string{models.VerificationStatusPending, models.VerificationStatusVerified, models.VerificationStatusRejected}
)

// AdminDependencies groups the collaborators of the admin service.
type AdminDependencies struct {
	Forms             repository.FormSubmissionRepository
	Verifications     repository.VerificationRequestRepository
	Applications      repository.ApplicationStatusRepository
	Results           repository.StudentResultRepository
	VerificationData  repository.VerificationDataRepository
	Users             repository.UserRepository
	Imports           repository.ImportRepository
	Cache             *redis.Client
	DashboardCacheTTL time.Duration
	Activity          ActivityRecorder
	Events            EventPublisher
}

// AdminService backs the admin console: overview, submission review and exports.
type AdminService interface {
	Dashboard(ctx context.Context) (dto.DashboardResponse, error)
	ListForms(ctx context.Context, req dto.AdminListRequest) (dto.AdminFormListResponse, error)
	UpdateFormStatus(ctx context.Context, actor ActivityActor, reference, status string) (dto.FormSubmissionResponse, error)
	DeleteForm(ctx context.Context, actor ActivityActor, reference string) error
	ExportForms(ctx context.Context) (dto.ExportFile, error)
	ListVerifications(ctx context.Context, req dto.AdminListRequest) (dto.AdminVerificationListResponse, error)
	UpdateVerificationStatus(ctx context.Context, actor ActivityActor, reference, status string) (dto.VerificationRequestResponse, error)
	DeleteVerification(ctx context.Context, actor ActivityActor, reference string) error
	ExportVerifications(ctx context.Context) (dto.ExportFile, error)
}

type adminService struct {
	deps   AdminDependencies
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewAdminService constructs the admin console service.
func NewAdminService(deps AdminDependencies, logger zerolog.Logger) AdminService {
	if deps.DashboardCacheTTL <= 0 {
		deps.DashboardCacheTTL = time.Minute
	}
	deps.Activity = recorderOrNoop(deps.Activity)
	deps.Events = publisherOrNoop(deps.Events)

	return &adminService{
		deps:   deps,
		logger: logger.With().Str("component", "admin_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/dsbe-portal-api/internal/service/admin"),
		now:    time.Now,
	}
}

func (s *adminService) Dashboard(ctx context.Context) (dto.DashboardResponse, error) {
	ctx, span := s.tracer.Start(ctx, "admin.dashboard")
	defer span.End()

	cache := s.deps.Cache
	if cache != nil {
		if payload, err := cache.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			var cached dto.DashboardResponse
			if err := json.Unmarshal(payload, &cached); err == nil {
				cached.CacheHit = true
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	counts, err := s.collectCounts(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.DashboardResponse{}, err
	}

	response := dto.DashboardResponse{Counts: counts, GeneratedAt: s.now().UTC()}
	if cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := cache.Set(ctx, dashboardCacheKey, payload, s.deps.DashboardCacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write dashboard cache")
			}
		}
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))
	return response, nil
}

func (s *adminService) collectCounts(ctx context.Context) (dto.DashboardCounts, error) {
	var counts dto.DashboardCounts
	var err error

	if counts.Forms, err = s.deps.Forms.CountByStatus(ctx); err != nil {
		return counts, fmt.Errorf("count forms: %w", err)
	}
	counts.FormsTotal = sumCounts(counts.Forms)

	if counts.Verifications, err = s.deps.Verifications.CountByStatus(ctx); err != nil {
		return counts, fmt.Errorf("count verification requests: %w", err)
	}
	counts.VerificationsTotal = sumCounts(counts.Verifications)

	if counts.Applications, err = s.deps.Applications.Count(ctx); err != nil {
		return counts, fmt.Errorf("count applications: %w", err)
	}
	if counts.Results, err = s.deps.Results.Count(ctx); err != nil {
		return counts, fmt.Errorf("count results: %w", err)
	}
	if counts.VerificationRecords, err = s.deps.VerificationData.Count(ctx); err != nil {
		return counts, fmt.Errorf("count verification data: %w", err)
	}
	if s.deps.Users != nil {
		if counts.RegisteredUsers, err = s.deps.Users.Count(ctx); err != nil {
			return counts, fmt.Errorf("count users: %w", err)
		}
	}

	counts.LastImports = make(map[string]*time.Time, len(csvimport.Kinds()))
	for _, kind := range csvimport.Kinds() {
		counts.LastImports[kind.Slug()] = nil
		if s.deps.Imports == nil {
			continue
		}
		record, err := s.deps.Imports.Latest(ctx, string(kind))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return counts, fmt.Errorf("latest %s import: %w", kind, err)
		}
		at := record.CreatedAt
		counts.LastImports[kind.Slug()] = &at
	}

	return counts, nil
}

func (s *adminService) ListForms(ctx context.Context, req dto.AdminListRequest) (dto.AdminFormListResponse, error) {
	filter := submissionFilter(req)
	if filter.Status != "" {
		if status, ok := canonicalStatus(filter.Status, formStatuses); ok {
			filter.Status = status
		}
	}

	rows, total, err := s.deps.Forms.List(ctx, filter)
	if err != nil {
		return dto.AdminFormListResponse{}, err
	}

	items := make([]dto.FormSubmissionResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.NewFormSubmissionResponse(row))
	}

	return dto.AdminFormListResponse{Items: items, Pagination: paginationMeta(filter.Page, filter.PageSize, total)}, nil
}

func (s *adminService) UpdateFormStatus(ctx context.Context, actor ActivityActor, reference, status string) (dto.FormSubmissionResponse, error) {
	canonical, ok := canonicalStatus(status, formStatuses)
	if !ok {
		return dto.FormSubmissionResponse{}, ErrInvalidStatus
	}

	reference = strings.TrimSpace(reference)
	previous, err := s.deps.Forms.GetByReference(ctx, reference)
	if err != nil {
		return dto.FormSubmissionResponse{}, mapNotFound(err, ErrFormNotFound)
	}

	updated, err := s.deps.Forms.UpdateStatus(ctx, reference, canonical)
	if err != nil {
		return dto.FormSubmissionResponse{}, mapNotFound(err, ErrFormNotFound)
	}

	s.afterMutation(ctx, actor, "form.status_updated", "form_submission", reference, EventStatusChanged,
		fmt.Sprintf("Form %s marked %s", reference, canonical),
		map[string]interface{}{"from": previous.Status, "to": canonical})

	return dto.NewFormSubmissionResponse(updated), nil
}

func (s *adminService) DeleteForm(ctx context.Context, actor ActivityActor, reference string) error {
	reference = strings.TrimSpace(reference)
	if err := s.deps.Forms.Delete(ctx, reference); err != nil {
		return mapNotFound(err, ErrFormNotFound)
	}

	s.afterMutation(ctx, actor, "form.deleted", "form_submission", reference, EventRecordDeleted,
		fmt.Sprintf("Form %s deleted", reference), nil)
	return nil
}

func (s *adminService) ExportForms(ctx context.Context) (dto.ExportFile, error) {
	rows, _, err := s.deps.Forms.List(ctx, repository.SubmissionFilter{})
	if err != nil {
		return dto.ExportFile{}, err
	}
	if len(rows) == 0 {
		return dto.ExportFile{}, ErrNothingToExport
	}

	var buf bytes.Buffer
	if err := csvimport.WriteFormSubmissions(&buf, rows); err != nil {
		return dto.ExportFile{}, fmt.Errorf("write forms export: %w", err)
	}
	return dto.ExportFile{FileName: "form_submissions.csv", Content: buf.Bytes()}, nil
}

func (s *adminService) ListVerifications(ctx context.Context, req dto.AdminListRequest) (dto.AdminVerificationListResponse, error) {
	filter := submissionFilter(req)
	if filter.Status != "" {
		if status, ok := canonicalStatus(filter.Status, verificationStatuses); ok {
			filter.Status = status
		}
	}

	rows, total, err := s.deps.Verifications.List(ctx, filter)
	if err != nil {
		return dto.AdminVerificationListResponse{}, err
	}

	items := make([]dto.VerificationRequestResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.NewVerificationRequestResponse(row))
	}

	return dto.AdminVerificationListResponse{Items: items, Pagination: paginationMeta(filter.Page, filter.PageSize, total)}, nil
}

func (s *adminService) UpdateVerificationStatus(ctx context.Context, actor ActivityActor, reference, status string) (dto.VerificationRequestResponse, error) {
	canonical, ok := canonicalStatus(status, verificationStatuses)
	if !ok {
		return dto.VerificationRequestResponse{}, ErrInvalidStatus
	}

	reference = strings.TrimSpace(reference)
	previous, err := s.deps.Verifications.GetByReference(ctx, reference)
	if err != nil {
		return dto.VerificationRequestResponse{}, mapNotFound(err, ErrVerificationNotFound)
	}

	updated, err := s.deps.Verifications.UpdateStatus(ctx, reference, canonical)
	if err != nil {
		return dto.VerificationRequestResponse{}, mapNotFound(err, ErrVerificationNotFound)
	}

	s.afterMutation(ctx, actor, "verification.status_updated", "verification_request", reference, EventStatusChanged,
		fmt.Sprintf("Verification %s marked %s", reference, canonical),
		map[string]interface{}{"from": previous.Status, "to": canonical})

	return dto.NewVerificationRequestResponse(updated), nil
}

func (s *adminService) DeleteVerification(ctx context.Context, actor ActivityActor, reference string) error {
	reference = strings.TrimSpace(reference)
	if err := s.deps.Verifications.Delete(ctx, reference); err != nil {
		return mapNotFound(err, ErrVerificationNotFound)
	}

	s.afterMutation(ctx, actor, "verification.deleted", "verification_request", reference, EventRecordDeleted,
		fmt.Sprintf("Verification %s deleted", reference), nil)
	return nil
}

func (s *adminService) ExportVerifications(ctx context.Context) (dto.ExportFile, error) {
	rows, _, err := s.deps.Verifications.List(ctx, repository.SubmissionFilter{})
	if err != nil {
		return dto.ExportFile{}, err
	}
	if len(rows) == 0 {
		return dto.ExportFile{}, ErrNothingToExport
	}

	var buf bytes.Buffer
	if err := csvimport.WriteVerificationRequests(&buf, rows); err != nil {
		return dto.ExportFile{}, fmt.Errorf("write verification export: %w", err)
	}
	return dto.ExportFile{FileName: "verification_requests.csv", Content: buf.Bytes()}, nil
}

// afterMutation records the audit entry, drops the cached overview and notifies the feed.
// Failures here never undo the mutation.
func (s *adminService) afterMutation(ctx context.Context, actor ActivityActor, action, entityType, reference, eventType, summary string, metadata map[string]interface{}) {
	if _, err := s.deps.Activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityRef:  reference,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}

	if err := invalidatePrefix(ctx, s.deps.Cache, dashboardCachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}

	s.deps.Events.Publish(ctx, eventType, reference, summary, metadata)
}

func submissionFilter(req dto.AdminListRequest) repository.SubmissionFilter {
	return repository.SubmissionFilter{
		Search:   strings.TrimSpace(req.Search),
		Status:   strings.TrimSpace(req.Status),
		Class:    strings.TrimSpace(req.Class),
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}
}

// canonicalStatus matches value case-insensitively against allowed.
func canonicalStatus(value string, allowed []string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, value) {
			return candidate, true
		}
	}
	return "", false
}

func sumCounts(counts map[string]int64) int64 {
	var total int64
	for _, count := range counts {
		total += count
	}
	return total
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
