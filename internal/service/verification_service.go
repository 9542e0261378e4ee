package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/models"
	"github.com/noah-isme/dsbe-portal-api/internal/observability"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
	"github.com/noah-isme/dsbe-portal-api/internal/validation"
)

// ErrLookupFieldsMissing indicates a public lookup omitted a required field.
var ErrLookupFieldsMissing = errors.New("lookup fields missing")

var verificationRequestMessages = map[string]string{
	"requestor_type":  "Required",
	"org_name":        "Required",
	"contact_person":  "Required",
	"email":           "Valid email required",
	"mobile":          "Valid 10-digit mobile required",
	"candidate_name":  "Required",
	"candidate_roll":  "Required",
	"candidate_class": "Required",
	"candidate_year":  "Valid year required",
	"candidate_dob":   "Required",
	"purpose":         "Required",
}

// VerificationService handles certificate verification for employers and institutions.
type VerificationService interface {
	Request(ctx context.Context, req dto.VerificationRequestPayload) (dto.SubmissionReceipt, error)
	Verify(ctx context.Context, req dto.InstantVerifyRequest) (dto.InstantVerifyResponse, error)
}

type verificationService struct {
	requests  repository.VerificationRequestRepository
	records   repository.VerificationDataRepository
	validator *validator.Validate
	events    EventPublisher
	cache     *redis.Client
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewVerificationService constructs the verification service.
func NewVerificationService(
	requests repository.VerificationRequestRepository,
	records repository.VerificationDataRepository,
	validate *validator.Validate,
	events EventPublisher,
	cache *redis.Client,
	logger zerolog.Logger,
) VerificationService {
	return &verificationService{
		requests:  requests,
		records:   records,
		validator: validate,
		events:    publisherOrNoop(events),
		cache:     cache,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "verification_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/dsbe-portal-api/internal/service/verification"),
		now:       time.Now,
	}
}

func (s *verificationService) Request(ctx context.Context, req dto.VerificationRequestPayload) (dto.SubmissionReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "verification.request")
	defer span.End()

	req.RequestorType = plainText(s.sanitizer, req.RequestorType)
	req.OrgName = plainText(s.sanitizer, req.OrgName)
	req.OrgAddress = plainText(s.sanitizer, req.OrgAddress)
	req.ContactPerson = plainText(s.sanitizer, req.ContactPerson)
	req.Email = strings.TrimSpace(req.Email)
	req.Mobile = strings.TrimSpace(req.Mobile)
	req.CandidateName = plainText(s.sanitizer, req.CandidateName)
	req.CandidateRoll = strings.TrimSpace(req.CandidateRoll)
	req.CandidateClass = strings.TrimSpace(req.CandidateClass)
	req.CandidateYear = strings.TrimSpace(req.CandidateYear)
	req.CandidateDOB = strings.TrimSpace(req.CandidateDOB)
	req.Purpose = plainText(s.sanitizer, req.Purpose)

	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		if !validation.IsValidationError(err) {
			return dto.SubmissionReceipt{}, err
		}
		return dto.SubmissionReceipt{}, &ValidationError{
			Message: "Please fix the errors",
			Fields:  validation.Messages(err, verificationRequestMessages),
		}
	}

	now := s.now().UTC()
	request := models.VerificationRequest{
		ReferenceID:   newReference("VER", now),
		CandidateName: req.CandidateName,
		RollNo:        req.CandidateRoll,
		ClassSelected: req.CandidateClass,
		Year:          req.CandidateYear,
		CandidateDOB:  req.CandidateDOB,
		Email:         strings.ToLower(req.Email),
		Mobile:        req.Mobile,
		Purpose:       req.Purpose,
		RequestorType: req.RequestorType,
		OrgName:       req.OrgName,
		OrgAddress:    req.OrgAddress,
		ContactPerson: req.ContactPerson,
		Status:        models.VerificationStatusPending,
		SubmittedAt:   now,
	}
	span.SetAttributes(attribute.String("verification.reference_id", request.ReferenceID))

	if err := s.requests.Create(ctx, &request); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.SubmissionReceipt{}, err
	}

	observability.Submissions().WithLabelValues("verification_request").Inc()
	if err := invalidatePrefix(ctx, s.cache, dashboardCachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
	s.events.Publish(ctx, EventVerificationRequested, request.ReferenceID,
		request.OrgName+" requested verification of "+request.CandidateName,
		map[string]interface{}{"roll_no": request.RollNo, "purpose": request.Purpose})

	s.logger.Info().
		Str("reference_id", request.ReferenceID).
		Str("email", maskEmail(request.Email)).
		Msg("verification request submitted")

	return dto.SubmissionReceipt{ID: request.ReferenceID, Status: request.Status, SubmittedAt: request.SubmittedAt}, nil
}

// Verify matches roll number and date of birth, then requires class and year
// of the first match to agree with the query.
func (s *verificationService) Verify(ctx context.Context, req dto.InstantVerifyRequest) (dto.InstantVerifyResponse, error) {
	ctx, span := s.tracer.Start(ctx, "verification.instant")
	defer span.End()

	rollNo := strings.TrimSpace(req.RollNo)
	class := strings.TrimSpace(req.ClassSelected)
	year := strings.TrimSpace(req.Year)
	dob := strings.TrimSpace(req.DOB)
	if rollNo == "" || class == "" || year == "" || dob == "" {
		return dto.InstantVerifyResponse{}, ErrLookupFieldsMissing
	}

	record, err := s.records.Search(ctx, rollNo, dob)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.Lookups().WithLabelValues("verification", "not_found").Inc()
			return dto.InstantVerifyResponse{Found: false}, nil
		}
		span.RecordError(err)
		return dto.InstantVerifyResponse{}, err
	}

	if record.ClassSelected != class || record.Year != year {
		observability.Lookups().WithLabelValues("verification", "not_found").Inc()
		return dto.InstantVerifyResponse{Found: false}, nil
	}

	observability.Lookups().WithLabelValues("verification", "found").Inc()
	return dto.InstantVerifyResponse{
		Found:  true,
		Name:   record.StudentName,
		Status: record.Status,
		RollNo: record.RollNo,
	}, nil
}
