package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/cache"
	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/models"
	"github.com/noah-isme/institute-api/internal/repository"
)

// ErrAchievementNotFound indicates a missing achievement.
var ErrAchievementNotFound = errors.New("achievement not found")

// Window used for the "recent" stats bucket.
const recentAchievementWindow = 90 * 24 * time.Hour

// AchievementService exposes achievement operations.
type AchievementService interface {
	List(ctx context.Context, req dto.AchievementListRequest) (dto.AchievementListResponse, error)
	AdminList(ctx context.Context, req dto.AchievementListRequest) (dto.AchievementListResponse, error)
	GetByID(ctx context.Context, id uint) (dto.AchievementResponse, error)
	Create(ctx context.Context, payload dto.AchievementCreateRequest, actor ActivityActor) (dto.AchievementResponse, error)
	Update(ctx context.Context, id uint, payload dto.AchievementUpdateRequest, actor ActivityActor) (dto.AchievementResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
	Stats(ctx context.Context) (dto.AchievementStatsResponse, error)
}

const achievementCachePrefix = "achievements"

type achievementService struct {
	repo      repository.AchievementRepository
	cache     cache.QueryCache
	ttl       time.Duration
	statsTTL  time.Duration
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAchievementService constructs the achievement service.
func NewAchievementService(repo repository.AchievementRepository, queryCache cache.QueryCache, ttl, statsTTL time.Duration, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) AchievementService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if statsTTL <= 0 {
		statsTTL = time.Minute
	}
	return &achievementService{
		repo:      repo,
		cache:     queryCache,
		ttl:       ttl,
		statsTTL:  statsTTL,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "achievement_service").Logger(),
		now:       time.Now,
	}
}

func (s *achievementService) List(ctx context.Context, req dto.AchievementListRequest) (dto.AchievementListResponse, error) {
	// Public reads only ever see published achievements.
	req.Status = models.AchievementStatusPublished

	filter := s.buildFilter(req)
	key := s.listCacheKey(filter)

	payload, hit, err := s.cache.GetOrFetch(ctx, key, s.ttl, func(ctx context.Context) ([]byte, error) {
		response, err := s.fetchList(ctx, filter)
		if err != nil {
			return nil, err
		}
		return json.Marshal(response)
	})
	if err != nil {
		return dto.AchievementListResponse{}, err
	}

	var response dto.AchievementListResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return dto.AchievementListResponse{}, err
	}
	response.CacheHit = hit
	return response, nil
}

func (s *achievementService) AdminList(ctx context.Context, req dto.AchievementListRequest) (dto.AchievementListResponse, error) {
	return s.fetchList(ctx, s.buildFilter(req))
}

func (s *achievementService) buildFilter(req dto.AchievementListRequest) repository.AchievementFilter {
	return repository.AchievementFilter{
		Status:       req.Status,
		Type:         strings.TrimSpace(req.Type),
		AchieverType: strings.TrimSpace(req.AchieverType),
		CategoryID:   req.CategoryID,
		Featured:     req.Featured,
		From:         req.From,
		To:           req.To,
		Page:         normalizePage(req.Page),
		PageSize:     clampPageSize(req.PageSize),
	}
}

func (s *achievementService) listCacheKey(filter repository.AchievementFilter) string {
	categoryKey := "0"
	if filter.CategoryID != nil {
		categoryKey = fmt.Sprintf("%d", *filter.CategoryID)
	}
	featuredKey := "any"
	if filter.Featured != nil {
		featuredKey = fmt.Sprintf("%t", *filter.Featured)
	}
	rangeKey := ""
	if filter.From != nil {
		rangeKey += fmt.Sprintf("f%d", filter.From.Unix())
	}
	if filter.To != nil {
		rangeKey += fmt.Sprintf("t%d", filter.To.Unix())
	}
	return fmt.Sprintf("%s:list:v1:%s:%s:%s:%s:%s:%s:%d:%d",
		achievementCachePrefix, filter.Status, filter.Type, filter.AchieverType, categoryKey, featuredKey, rangeKey, filter.Page, filter.PageSize)
}

func (s *achievementService) fetchList(ctx context.Context, filter repository.AchievementFilter) (dto.AchievementListResponse, error) {
	achievements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AchievementListResponse{}, err
	}

	items := make([]dto.AchievementResponse, 0, len(achievements))
	for _, achievement := range achievements {
		items = append(items, dto.NewAchievementResponse(achievement))
	}

	return dto.AchievementListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalItems: total,
			TotalPages: calculateTotalPages(total, filter.PageSize),
		},
	}, nil
}

func (s *achievementService) GetByID(ctx context.Context, id uint) (dto.AchievementResponse, error) {
	achievement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AchievementResponse{}, ErrAchievementNotFound
		}
		return dto.AchievementResponse{}, err
	}
	return dto.NewAchievementResponse(achievement), nil
}

func (s *achievementService) Create(ctx context.Context, payload dto.AchievementCreateRequest, actor ActivityActor) (dto.AchievementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AchievementResponse{}, err
	}

	status := payload.Status
	if status == "" {
		status = models.AchievementStatusDraft
	}

	adminID := actor.ID
	achievement := models.Achievement{
		Title:        strings.TrimSpace(payload.Title),
		Description:  strings.TrimSpace(payload.Description),
		CategoryID:   payload.CategoryID,
		Type:         payload.Type,
		AchieverName: strings.TrimSpace(payload.AchieverName),
		AchieverType: payload.AchieverType,
		DateAchieved: payload.DateAchieved,
		ImageURL:     strings.TrimSpace(payload.ImageURL),
		Details:      dto.DetailsToJSON(payload.Details),
		IsFeatured:   payload.IsFeatured,
		SortOrder:    payload.SortOrder,
		Status:       status,
		CreatedBy:    &adminID,
	}

	if err := s.repo.Create(ctx, &achievement); err != nil {
		return dto.AchievementResponse{}, err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "created", achievement.ID)
	return dto.NewAchievementResponse(achievement), nil
}

func (s *achievementService) Update(ctx context.Context, id uint, payload dto.AchievementUpdateRequest, actor ActivityActor) (dto.AchievementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AchievementResponse{}, err
	}

	achievement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AchievementResponse{}, ErrAchievementNotFound
		}
		return dto.AchievementResponse{}, err
	}

	if payload.Title != nil {
		achievement.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		achievement.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.CategoryID != nil {
		achievement.CategoryID = payload.CategoryID
	}
	if payload.Type != nil {
		achievement.Type = *payload.Type
	}
	if payload.AchieverName != nil {
		achievement.AchieverName = strings.TrimSpace(*payload.AchieverName)
	}
	if payload.AchieverType != nil {
		achievement.AchieverType = *payload.AchieverType
	}
	if payload.DateAchieved != nil {
		achievement.DateAchieved = *payload.DateAchieved
	}
	if payload.ImageURL != nil {
		achievement.ImageURL = strings.TrimSpace(*payload.ImageURL)
	}
	if payload.Details != nil {
		achievement.Details = dto.DetailsToJSON(*payload.Details)
	}
	if payload.IsFeatured != nil {
		achievement.IsFeatured = *payload.IsFeatured
	}
	if payload.SortOrder != nil {
		achievement.SortOrder = *payload.SortOrder
	}
	if payload.Status != nil {
		achievement.Status = *payload.Status
	}

	if err := s.repo.Update(ctx, &achievement); err != nil {
		return dto.AchievementResponse{}, err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "updated", achievement.ID)
	return dto.NewAchievementResponse(achievement), nil
}

func (s *achievementService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAchievementNotFound
		}
		return err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "deleted", id)
	return nil
}

// Stats aggregates published achievement counts from independent count
// queries. The buckets are sampled at slightly different instants, which is
// acceptable for the dashboard they feed.
func (s *achievementService) Stats(ctx context.Context) (dto.AchievementStatsResponse, error) {
	key := achievementCachePrefix + ":stats:v1"

	payload, hit, err := s.cache.GetOrFetch(ctx, key, s.statsTTL, func(ctx context.Context) ([]byte, error) {
		published := repository.AchievementFilter{Status: models.AchievementStatusPublished}

		total, err := s.repo.Count(ctx, published)
		if err != nil {
			return nil, err
		}

		byAchiever := map[string]int64{}
		for _, achieverType := range []string{
			models.AchieverTypeStudent,
			models.AchieverTypeFaculty,
			models.AchieverTypeDepartment,
			models.AchieverTypeInstitution,
		} {
			filter := published
			filter.AchieverType = achieverType
			count, err := s.repo.Count(ctx, filter)
			if err != nil {
				return nil, err
			}
			byAchiever[achieverType] = count
		}

		featuredFlag := true
		featuredFilter := published
		featuredFilter.Featured = &featuredFlag
		featured, err := s.repo.Count(ctx, featuredFilter)
		if err != nil {
			return nil, err
		}

		since := s.now().Add(-recentAchievementWindow)
		recentFilter := published
		recentFilter.From = &since
		recent, err := s.repo.Count(ctx, recentFilter)
		if err != nil {
			return nil, err
		}

		response := dto.AchievementStatsResponse{
			Total:                   total,
			StudentAchievements:     byAchiever[models.AchieverTypeStudent],
			FacultyAchievements:     byAchiever[models.AchieverTypeFaculty],
			DepartmentAchievements:  byAchiever[models.AchieverTypeDepartment],
			InstitutionAchievements: byAchiever[models.AchieverTypeInstitution],
			Featured:                featured,
			RecentCount:             recent,
			GeneratedAt:             s.now().UTC(),
		}
		return json.Marshal(response)
	})
	if err != nil {
		return dto.AchievementStatsResponse{}, err
	}

	var response dto.AchievementStatsResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return dto.AchievementStatsResponse{}, err
	}
	response.CacheHit = hit
	return response, nil
}

func (s *achievementService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, achievementCachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate achievement cache")
	}
}

func (s *achievementService) recordActivity(ctx context.Context, actor ActivityActor, action string, id uint) {
	if s.activity == nil {
		return
	}
	adminID := actor.ID
	entry := ActivityEntry{
		AdminID:      &adminID,
		Action:       action,
		ResourceType: "achievement",
		ResourceID:   &id,
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record achievement activity")
	}
}
