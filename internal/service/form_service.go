package service

import (
	"context"
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

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/models"
	"github.com/noah-isme/dsbe-portal-api/internal/observability"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
	"github.com/noah-isme/dsbe-portal-api/internal/validation"
)

var applicationFormMessages = map[string]string{
	"applicant_name":       "Name is required",
	"guardian_name":        "Guardian name is required",
	"dob":                  "Date of birth is required",
	"gender":               "Gender is required",
	"email":                "Valid email is required",
	"mobile":               "Valid 10-digit mobile is required",
	"address":              "Address is required",
	"city":                 "City is required",
	"state":                "State is required",
	"pincode":              "Valid 6-digit pincode is required",
	"class_selected":       "Class is required",
	"class_selected.oneof": "Class must be 10 or 12",
	"stream":               "Stream is required",
	"subjects.min":         "Select at least 5 subjects",
	"subjects.max":         "Select at most 7 subjects",
	"subjects":             "Select at least 5 subjects",
}

// FormService accepts student application forms from the public site.
type FormService interface {
	Submit(ctx context.Context, req dto.ApplicationFormRequest) (dto.SubmissionReceipt, error)
}

type formService struct {
	repo      repository.FormSubmissionRepository
	validator *validator.Validate
	events    EventPublisher
	cache     *redis.Client
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewFormService constructs the application form service.
func NewFormService(repo repository.FormSubmissionRepository, validate *validator.Validate, events EventPublisher, cache *redis.Client, logger zerolog.Logger) FormService {
	return &formService{
		repo:      repo,
		validator: validate,
		events:    publisherOrNoop(events),
		cache:     cache,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "form_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/dsbe-portal-api/internal/service/forms"),
		now:       time.Now,
	}
}

func (s *formService) Submit(ctx context.Context, req dto.ApplicationFormRequest) (dto.SubmissionReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "forms.submit")
	defer span.End()

	req = s.clean(req)

	if err := s.validate(req); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmissionReceipt{}, err
	}

	classSelected := "Class 10"
	stream := ""
	if req.ClassSelected == "12" {
		stream = req.Stream
		classSelected = "Class 12 - " + stream
	}

	now := s.now().UTC()
	submission := models.FormSubmission{
		ReferenceID:   newReference("FORM", now),
		StudentName:   req.ApplicantName,
		GuardianName:  req.GuardianName,
		Email:         strings.ToLower(req.Email),
		Mobile:        req.Mobile,
		FormType:      models.FormTypeStudentApplication,
		ClassSelected: classSelected,
		DOB:           req.DOB,
		Gender:        req.Gender,
		Category:      req.Category,
		Nationality:   req.Nationality,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Pincode:       req.Pincode,
		Stream:        stream,
		Subjects:      req.Subjects,
		Status:        models.FormStatusPending,
		SubmittedAt:   now,
	}
	span.SetAttributes(
		attribute.String("form.reference_id", submission.ReferenceID),
		attribute.String("form.class", submission.ClassSelected),
	)

	if err := s.repo.Create(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.SubmissionReceipt{}, err
	}

	observability.Submissions().WithLabelValues("form").Inc()
	if err := invalidatePrefix(ctx, s.cache, dashboardCachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
	s.events.Publish(ctx, EventFormSubmitted, submission.ReferenceID,
		submission.StudentName+" applied for "+submission.ClassSelected,
		map[string]interface{}{"class_selected": submission.ClassSelected})

	s.logger.Info().
		Str("reference_id", submission.ReferenceID).
		Str("email", maskEmail(submission.Email)).
		Str("class_selected", submission.ClassSelected).
		Msg("application form submitted")
	span.SetStatus(codes.Ok, "submitted")

	return dto.SubmissionReceipt{
		ID:          submission.ReferenceID,
		Status:      submission.Status,
		SubmittedAt: submission.SubmittedAt,
	}, nil
}

func (s *formService) clean(req dto.ApplicationFormRequest) dto.ApplicationFormRequest {
	req.ApplicantName = plainText(s.sanitizer, req.ApplicantName)
	req.GuardianName = plainText(s.sanitizer, req.GuardianName)
	req.DOB = strings.TrimSpace(req.DOB)
	req.Gender = plainText(s.sanitizer, req.Gender)
	req.Email = strings.TrimSpace(req.Email)
	req.Mobile = strings.TrimSpace(req.Mobile)
	req.Address = plainText(s.sanitizer, req.Address)
	req.City = plainText(s.sanitizer, req.City)
	req.State = plainText(s.sanitizer, req.State)
	req.Pincode = strings.TrimSpace(req.Pincode)
	req.ClassSelected = strings.TrimSpace(req.ClassSelected)
	req.Stream = strings.TrimSpace(req.Stream)
	req.Category = plainText(s.sanitizer, req.Category)
	req.Nationality = plainText(s.sanitizer, req.Nationality)

	subjects := make([]string, 0, len(req.Subjects))
	for _, subject := range req.Subjects {
		subjects = append(subjects, strings.TrimSpace(subject))
	}
	req.Subjects = subjects
	return req
}

func (s *formService) validate(req dto.ApplicationFormRequest) error {
	fields := map[string]string{}
	if err := s.validator.Struct(req); err != nil {
		if !validation.IsValidationError(err) {
			return err
		}
		fields = validation.Messages(err, applicationFormMessages)
		if fields == nil {
			fields = map[string]string{}
		}
	}

	if _, failed := fields["stream"]; !failed && req.ClassSelected == "12" {
		if _, ok := class12Subjects[req.Stream]; !ok {
			fields["stream"] = "Stream must be Science, Commerce, or Arts"
		}
	}

	if _, failed := fields["subjects"]; !failed {
		if _, classFailed := fields["class_selected"]; !classFailed {
			if _, streamFailed := fields["stream"]; !streamFailed {
				if message := checkSubjects(req.ClassSelected, req.Stream, req.Subjects); message != "" {
					fields["subjects"] = message
				}
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Message: "Please fix the errors in the form", Fields: fields}
}

func checkSubjects(class, stream string, chosen []string) string {
	offered, ok := subjectsFor(class, stream)
	if !ok {
		return ""
	}

	allowed := make(map[string]struct{}, len(offered))
	for _, subject := range offered {
		allowed[subject] = struct{}{}
	}

	seen := make(map[string]struct{}, len(chosen))
	for _, subject := range chosen {
		if _, ok := allowed[subject]; !ok {
			return "Subject " + subject + " is not offered for the selected class"
		}
		if _, dup := seen[subject]; dup {
			return "Each subject can be selected only once"
		}
		seen[subject] = struct{}{}
	}
	return ""
}
