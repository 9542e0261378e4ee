package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
)

// BoardProfile holds the configurable identity of the board.
type BoardProfile struct {
	Name        string
	Established int
}

// ContentService builds the informational pages.
type ContentService interface {
	About(ctx context.Context) (dto.AboutResponse, error)
}

type contentService struct {
	profile      BoardProfile
	forms        repository.FormSubmissionRepository
	results      repository.StudentResultRepository
	verification repository.VerificationDataRepository
	logger       zerolog.Logger
	now          func() time.Time
}

// NewContentService constructs the content service.
func NewContentService(
	profile BoardProfile,
	forms repository.FormSubmissionRepository,
	results repository.StudentResultRepository,
	verification repository.VerificationDataRepository,
	logger zerolog.Logger,
) ContentService {
	return &contentService{
		profile:      profile,
		forms:        forms,
		results:      results,
		verification: verification,
		logger:       logger.With().Str("component", "content_service").Logger(),
		now:          time.Now,
	}
}

func (s *contentService) About(ctx context.Context) (dto.AboutResponse, error) {
	response := dto.AboutResponse{
		Name:        s.profile.Name,
		Established: s.profile.Established,
		YearsActive: s.now().Year() - s.profile.Established,
		Summary:     "Committed to providing inclusive open schooling and flexible learning pathways to empower students across India with quality education.",
		Mission: []string{
			"Inclusive access to education for all",
			"Flexible pathways for diverse learners",
			"Transparent and fair evaluation processes",
		},
		Vision: []string{
			"A lifelong learning ecosystem",
			"Nationally trusted open schooling leader",
			"Empowering future generations",
		},
		Values: []string{"Integrity", "Inclusivity", "Transparency", "Excellence", "Service", "Innovation"},
		Timeline: []dto.Milestone{
			{Year: s.profile.Established, Title: "Founded", Text: "Established to promote open schooling across India."},
			{Year: 2002, Title: "Digital Records", Text: "Introduced digital student records and online services."},
			{Year: 2010, Title: "Expansion", Text: "Expanded study centers to cover more regions."},
			{Year: 2015, Title: "Student Services", Text: "Enhanced student support and counseling programs."},
			{Year: 2025, Title: "Modernization", Text: "Ongoing digital transformation for future-ready education."},
		},
		Affiliations: []dto.Affiliation{
			{Name: "COBSE Membership", Description: "Member of Council of Boards of School Education, ensuring national standards.", URL: "https://cobse.org"},
			{Name: "Ministry of Education", Description: "Recognized by the Ministry for quality open schooling programs.", URL: "https://education.gov.in"},
			{Name: "NIOS & State Schools", Description: "Affiliated with National Institute of Open Schooling and state networks.", URL: "https://nios.ac.in"},
		},
		Services: []dto.ServiceLink{
			{Title: "Open Schooling", Description: "Flexible courses for secondary and senior secondary.", Path: "/courses"},
			{Title: "Date-Sheets & Results", Description: "Timely exam schedules and result declarations.", Path: "/results"},
			{Title: "Certificate Verification", Description: "Secure online verification of credentials.", Path: "/verification"},
			{Title: "Student Support", Description: "Dedicated guidance, helplines, and counseling.", Path: "/form"},
		},
		Stats: map[string]int64{},
	}

	if counts, err := s.forms.CountByStatus(ctx); err == nil {
		var total int64
		for _, count := range counts {
			total += count
		}
		response.Stats["applications_received"] = total
	} else {
		s.logger.Warn().Err(err).Msg("failed to count form submissions")
	}

	if total, err := s.results.Count(ctx); err == nil {
		response.Stats["results_published"] = total
	} else {
		s.logger.Warn().Err(err).Msg("failed to count results")
	}

	if total, err := s.verification.Count(ctx); err == nil {
		response.Stats["certificates_on_record"] = total
	} else {
		s.logger.Warn().Err(err).Msg("failed to count verification records")
	}

	return response, nil
}
