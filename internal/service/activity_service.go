package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/institute-api/internal/cache"
	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/models"
	"github.com/noah-isme/institute-api/internal/repository"
)

// ActivityActor identifies the authenticated administrator behind an action.
type ActivityActor struct {
	ID   uint
	Role string
}

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	AdminID      *uint
	Action       string
	ResourceType string
	ResourceID   *uint
	Details      map[string]interface{}
}

// ActivityRecorder records audit entries. Recording is best effort: callers
// never fail their primary operation when the recorder errors.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// ActivityService exposes audit trail queries, retention cleanup and stats.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
	Cleanup(ctx context.Context, olderThanDays int, actor ActivityActor) (dto.ActivityCleanupResponse, error)
	Stats(ctx context.Context, windowDays int) (dto.ActivityStatsResponse, error)
}

const activityCachePrefix = "activity"

// Actions aggregated by Stats.
var trackedActions = []string{"created", "updated", "deleted", "approved", "rejected", "cleanup"}

type activityService struct {
	repo      repository.ActivityLogRepository
	cache     cache.QueryCache
	ttl       time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, queryCache cache.QueryCache, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) ActivityService {
	if ttl <= 0 {
		ttl = 45 * time.Second
	}
	return &activityService{
		repo:      repo,
		cache:     queryCache,
		ttl:       ttl,
		validator: validate,
		logger:    logger.With().Str("component", "activity_service").Logger(),
		now:       time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) error {
	if strings.TrimSpace(entry.Action) == "" {
		return fmt.Errorf("action is required")
	}
	if strings.TrimSpace(entry.ResourceType) == "" {
		return fmt.Errorf("resource type is required")
	}

	model := models.ActivityLog{
		AdminID:      entry.AdminID,
		Action:       strings.ToLower(strings.TrimSpace(entry.Action)),
		ResourceType: strings.ToLower(strings.TrimSpace(entry.ResourceType)),
		ResourceID:   entry.ResourceID,
		Details:      sanitizeDetails(entry.Details),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist activity log")
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityLogFilter{
		Page:         normalizePage(req.Page),
		PageSize:     clampPageSize(req.PageSize),
		Action:       strings.ToLower(strings.TrimSpace(req.Action)),
		ResourceType: strings.ToLower(strings.TrimSpace(req.ResourceType)),
	}
	if req.AdminID > 0 {
		filter.AdminID = &req.AdminID
	}
	if req.SinceDays > 0 {
		since := s.now().AddDate(0, 0, -req.SinceDays)
		filter.Since = &since
	}

	key := fmt.Sprintf("%s:list:v1:%d:%d:%s:%s:%d:%d",
		activityCachePrefix, filter.Page, filter.PageSize, filter.Action, filter.ResourceType, req.AdminID, req.SinceDays)

	payload, hit, err := s.cache.GetOrFetch(ctx, key, s.ttl, func(ctx context.Context) ([]byte, error) {
		entries, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}

		items := make([]dto.ActivityResponse, 0, len(entries))
		for _, entry := range entries {
			items = append(items, dto.NewActivityResponse(entry))
		}

		response := dto.ActivityListResponse{
			Items: items,
			Pagination: dto.PaginationMeta{
				Page:       filter.Page,
				PageSize:   filter.PageSize,
				TotalItems: total,
				TotalPages: calculateTotalPages(total, filter.PageSize),
			},
		}
		return json.Marshal(response)
	})
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	var response dto.ActivityListResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return dto.ActivityListResponse{}, err
	}
	response.CacheHit = hit
	return response, nil
}

func (s *activityService) Cleanup(ctx context.Context, olderThanDays int, actor ActivityActor) (dto.ActivityCleanupResponse, error) {
	if olderThanDays <= 0 {
		return dto.ActivityCleanupResponse{}, fmt.Errorf("cleanup threshold must be positive")
	}

	cutoff := s.now().AddDate(0, 0, -olderThanDays)
	removed, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return dto.ActivityCleanupResponse{}, err
	}

	s.invalidate(ctx)

	// The cleanup itself is auditable; failure to record it must not undo it.
	adminID := actor.ID
	entry := ActivityEntry{
		AdminID:      &adminID,
		Action:       "cleanup",
		ResourceType: "activity_log",
		Details: map[string]interface{}{
			"older_than_days": olderThanDays,
			"removed":         removed,
		},
	}
	if err := s.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record cleanup activity")
	}

	return dto.ActivityCleanupResponse{Removed: removed, Cutoff: cutoff}, nil
}

func (s *activityService) Stats(ctx context.Context, windowDays int) (dto.ActivityStatsResponse, error) {
	if windowDays <= 0 {
		windowDays = 7
	}

	key := fmt.Sprintf("%s:stats:v1:%d", activityCachePrefix, windowDays)
	payload, hit, err := s.cache.GetOrFetch(ctx, key, s.ttl, func(ctx context.Context) ([]byte, error) {
		since := s.now().AddDate(0, 0, -windowDays)

		total, err := s.repo.CountSince(ctx, since)
		if err != nil {
			return nil, err
		}

		byAction := make(map[string]int64, len(trackedActions))
		for _, action := range trackedActions {
			count, err := s.repo.CountByAction(ctx, action, since)
			if err != nil {
				return nil, err
			}
			byAction[action] = count
		}

		response := dto.ActivityStatsResponse{
			TotalRecent: total,
			ByAction:    byAction,
			WindowDays:  windowDays,
			GeneratedAt: s.now().UTC(),
		}
		return json.Marshal(response)
	})
	if err != nil {
		return dto.ActivityStatsResponse{}, err
	}

	var response dto.ActivityStatsResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return dto.ActivityStatsResponse{}, err
	}
	response.CacheHit = hit
	return response, nil
}

func (s *activityService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, activityCachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate activity cache")
	}
}

func sanitizeDetails(details map[string]interface{}) datatypes.JSONMap {
	if details == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range details {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}
