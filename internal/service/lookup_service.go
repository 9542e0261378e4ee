package service

import (
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

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/observability"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
)

var (
	// ErrApplicationNotFound indicates no application matched the id and date of birth.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrResultNotFound indicates no result matched the roll number and date of birth.
	ErrResultNotFound = errors.New("result not found")
)

const meritCachePrefix = "results:merit:"

// ApplicationService tracks admission applications published by the board.
type ApplicationService interface {
	Track(ctx context.Context, req dto.ApplicationTrackRequest) (dto.ApplicationStatusResponse, error)
}

type applicationService struct {
	repo   repository.ApplicationStatusRepository
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewApplicationService constructs the application tracking service.
func NewApplicationService(repo repository.ApplicationStatusRepository, logger zerolog.Logger) ApplicationService {
	return &applicationService{
		repo:   repo,
		logger: logger.With().Str("component", "application_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/dsbe-portal-api/internal/service/applications"),
	}
}

func (s *applicationService) Track(ctx context.Context, req dto.ApplicationTrackRequest) (dto.ApplicationStatusResponse, error) {
	ctx, span := s.tracer.Start(ctx, "applications.track")
	defer span.End()

	applicationID := strings.TrimSpace(req.ApplicationID)
	dob := strings.TrimSpace(req.DOB)
	if applicationID == "" || dob == "" {
		return dto.ApplicationStatusResponse{}, ErrLookupFieldsMissing
	}

	row, err := s.repo.Search(ctx, applicationID, dob)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.Lookups().WithLabelValues("application", "not_found").Inc()
			return dto.ApplicationStatusResponse{}, ErrApplicationNotFound
		}
		span.RecordError(err)
		return dto.ApplicationStatusResponse{}, err
	}

	observability.Lookups().WithLabelValues("application", "found").Inc()
	return dto.NewApplicationStatusResponse(row), nil
}

// ResultService serves published examination results.
type ResultService interface {
	Lookup(ctx context.Context, req dto.ResultLookupRequest) (dto.ResultResponse, error)
	MeritList(ctx context.Context) (dto.MeritListResponse, error)
}

type resultService struct {
	repo   repository.StudentResultRepository
	cache  *redis.Client
	ttl    time.Duration
	size   int
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewResultService constructs the results service. The cache is optional.
func NewResultService(repo repository.StudentResultRepository, cache *redis.Client, ttl time.Duration, size int, logger zerolog.Logger) ResultService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if size <= 0 {
		size = 5
	}
	return &resultService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		size:   size,
		logger: logger.With().Str("component", "result_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/dsbe-portal-api/internal/service/results"),
	}
}

// Lookup requires every search field but matches on roll number and date of birth only.
func (s *resultService) Lookup(ctx context.Context, req dto.ResultLookupRequest) (dto.ResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "results.lookup")
	defer span.End()

	rollNo := strings.TrimSpace(req.RollNo)
	dob := strings.TrimSpace(req.DOB)
	if rollNo == "" || strings.TrimSpace(req.ClassSelected) == "" || strings.TrimSpace(req.Year) == "" || dob == "" {
		return dto.ResultResponse{}, ErrLookupFieldsMissing
	}

	result, err := s.repo.Search(ctx, rollNo, dob)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.Lookups().WithLabelValues("result", "not_found").Inc()
			return dto.ResultResponse{}, ErrResultNotFound
		}
		span.RecordError(err)
		return dto.ResultResponse{}, err
	}

	observability.Lookups().WithLabelValues("result", "found").Inc()
	return dto.NewResultResponse(result), nil
}

func (s *resultService) MeritList(ctx context.Context) (dto.MeritListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "results.merit")
	defer span.End()

	key := fmt.Sprintf("%sv1:%d", meritCachePrefix, s.size)
	if s.cache != nil {
		if payload, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var cached dto.MeritListResponse
			if err := json.Unmarshal(payload, &cached); err == nil {
				cached.CacheHit = true
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read merit list cache")
		}
	}

	toppers, err := s.repo.Toppers(ctx, s.size)
	if err != nil {
		span.RecordError(err)
		return dto.MeritListResponse{}, err
	}

	items := make([]dto.MeritEntry, 0, len(toppers))
	for idx, result := range toppers {
		items = append(items, dto.MeritEntry{
			Rank:          idx + 1,
			StudentName:   result.StudentName,
			ClassSelected: result.ClassSelected,
			Year:          result.Year,
			Percentage:    result.Percentage,
			Division:      result.Division,
		})
	}
	response := dto.MeritListResponse{Items: items}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write merit list cache")
			}
		}
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))
	return response, nil
}

// invalidatePrefix removes cached keys under prefix.
func invalidatePrefix(ctx context.Context, cache *redis.Client, prefix string) error {
	if cache == nil {
		return nil
	}

	iter := cache.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return cache.Del(ctx, keys...).Err()
}
