package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/middleware"
	"github.com/noah-isme/dsbe-portal-api/internal/models"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
)

// ActivityActor represents the authenticated actor performing an admin action.
type ActivityActor struct {
	Email string
	Role  string
}

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	Actor      ActivityActor
	Action     string
	EntityType string
	EntityRef  string
	Metadata   map[string]interface{}
}

// ActivityRecorder defines behaviour for recording activity logs.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error)
}

// ActivityService exposes methods to query and persist activity logs.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	if strings.TrimSpace(entry.Action) == "" {
		return dto.ActivityResponse{}, fmt.Errorf("action is required")
	}
	if strings.TrimSpace(entry.EntityType) == "" {
		return dto.ActivityResponse{}, fmt.Errorf("entity type is required")
	}

	actor := strings.ToLower(strings.TrimSpace(entry.Actor.Email))
	if actor == "" {
		actor = "system"
	}

	model := models.ActivityLog{
		Actor:      actor,
		ActorRole:  normalizeRole(entry.Actor.Role),
		Action:     strings.ToLower(strings.TrimSpace(entry.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(entry.EntityType)),
		EntityRef:  strings.TrimSpace(entry.EntityRef),
		Metadata:   sanitizeMetadata(entry.Metadata),
	}
	if correlation := middleware.CorrelationIDFromContext(ctx); correlation != "" {
		model.Metadata["correlation_id"] = correlation
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", model.Action).Msg("failed to persist activity log")
		return dto.ActivityResponse{}, err
	}

	return toActivityResponse(model), nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	page := normalizePage(req.Page)
	pageSize := clampPageSize(req.PageSize)

	entries, total, err := s.repo.List(ctx, repository.ActivityLogFilter{
		Page:       page,
		PageSize:   pageSize,
		Actor:      strings.ToLower(strings.TrimSpace(req.Actor)),
		Action:     strings.ToLower(strings.TrimSpace(req.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(req.EntityType)),
	})
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	items := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toActivityResponse(entry))
	}

	return dto.ActivityListResponse{Items: items, Pagination: paginationMeta(page, pageSize, total)}, nil
}

func toActivityResponse(model models.ActivityLog) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:         model.ID,
		Actor:      model.Actor,
		ActorRole:  model.ActorRole,
		Action:     model.Action,
		EntityType: model.EntityType,
		EntityRef:  model.EntityRef,
		Metadata:   map[string]interface{}(model.Metadata),
		CreatedAt:  model.CreatedAt,
	}
}

// sanitizeMetadata masks contact details of applicants before they reach the audit trail.
func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		switch {
		case strings.Contains(lower, "email"):
			if str, ok := value.(string); ok {
				sanitized[key] = maskEmail(str)
			} else {
				sanitized[key] = "***"
			}
		case strings.Contains(lower, "token"), strings.Contains(lower, "password"), strings.Contains(lower, "mobile"):
			sanitized[key] = "***"
		default:
			sanitized[key] = value
		}
	}
	return sanitized
}

func normalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == "" {
		return "system"
	}
	return r
}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, ActivityEntry) (dto.ActivityResponse, error) {
	return dto.ActivityResponse{}, nil
}

func recorderOrNoop(r ActivityRecorder) ActivityRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
