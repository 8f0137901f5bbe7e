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

// ErrCategoryNotFound indicates a missing taxonomy entry.
var ErrCategoryNotFound = errors.New("category not found")

// ErrCategorySlugTaken indicates a slug collision on create.
var ErrCategorySlugTaken = errors.New("category slug already in use")

// CategoryService exposes taxonomy operations. Categories are the most stable
// entity in the system, so reads are cached the longest.
type CategoryService interface {
	List(ctx context.Context, activeOnly bool, page, pageSize int) (dto.CategoryListResponse, error)
	GetByID(ctx context.Context, id uint) (dto.CategoryResponse, error)
	Create(ctx context.Context, payload dto.CategoryCreateRequest, actor ActivityActor) (dto.CategoryResponse, error)
	Update(ctx context.Context, id uint, payload dto.CategoryUpdateRequest, actor ActivityActor) (dto.CategoryResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
}

const categoryCachePrefix = "categories"

type categoryService struct {
	repo      repository.CategoryRepository
	cache     cache.QueryCache
	ttl       time.Duration
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewCategoryService constructs the taxonomy service.
func NewCategoryService(repo repository.CategoryRepository, queryCache cache.QueryCache, ttl time.Duration, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) CategoryService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &categoryService{
		repo:      repo,
		cache:     queryCache,
		ttl:       ttl,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "category_service").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context, activeOnly bool, page, pageSize int) (dto.CategoryListResponse, error) {
	filter := repository.CategoryFilter{
		ActiveOnly: activeOnly,
		Page:       normalizePage(page),
		PageSize:   clampPageSize(pageSize),
	}

	key := fmt.Sprintf("%s:list:v1:%t:%d:%d", categoryCachePrefix, activeOnly, filter.Page, filter.PageSize)
	payload, hit, err := s.cache.GetOrFetch(ctx, key, s.ttl, func(ctx context.Context) ([]byte, error) {
		categories, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}

		items := make([]dto.CategoryResponse, 0, len(categories))
		for _, category := range categories {
			items = append(items, dto.NewCategoryResponse(category))
		}

		response := dto.CategoryListResponse{
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
		return dto.CategoryListResponse{}, err
	}

	var response dto.CategoryListResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return dto.CategoryListResponse{}, err
	}
	response.CacheHit = hit
	return response, nil
}

func (s *categoryService) GetByID(ctx context.Context, id uint) (dto.CategoryResponse, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CategoryResponse{}, ErrCategoryNotFound
		}
		return dto.CategoryResponse{}, err
	}
	return dto.NewCategoryResponse(category), nil
}

func (s *categoryService) Create(ctx context.Context, payload dto.CategoryCreateRequest, actor ActivityActor) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CategoryResponse{}, err
	}

	slug := generateSlug(payload.Name)
	if _, err := s.repo.GetBySlug(ctx, slug); err == nil {
		return dto.CategoryResponse{}, ErrCategorySlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CategoryResponse{}, err
	}

	active := true
	if payload.IsActive != nil {
		active = *payload.IsActive
	}

	category := models.Category{
		Name:        strings.TrimSpace(payload.Name),
		Slug:        slug,
		Description: strings.TrimSpace(payload.Description),
		Color:       strings.TrimSpace(payload.Color),
		Icon:        strings.TrimSpace(payload.Icon),
		IsActive:    active,
		SortOrder:   payload.SortOrder,
	}

	if err := s.repo.Create(ctx, &category); err != nil {
		return dto.CategoryResponse{}, err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "created", category.ID)
	return dto.NewCategoryResponse(category), nil
}

func (s *categoryService) Update(ctx context.Context, id uint, payload dto.CategoryUpdateRequest, actor ActivityActor) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CategoryResponse{}, err
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CategoryResponse{}, ErrCategoryNotFound
		}
		return dto.CategoryResponse{}, err
	}

	if payload.Name != nil {
		category.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Description != nil {
		category.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.Color != nil {
		category.Color = strings.TrimSpace(*payload.Color)
	}
	if payload.Icon != nil {
		category.Icon = strings.TrimSpace(*payload.Icon)
	}
	if payload.IsActive != nil {
		category.IsActive = *payload.IsActive
	}
	if payload.SortOrder != nil {
		category.SortOrder = *payload.SortOrder
	}

	if err := s.repo.Update(ctx, &category); err != nil {
		return dto.CategoryResponse{}, err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "updated", category.ID)
	return dto.NewCategoryResponse(category), nil
}

func (s *categoryService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "deleted", id)
	return nil
}

func (s *categoryService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, categoryCachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate category cache")
	}
}

func (s *categoryService) recordActivity(ctx context.Context, actor ActivityActor, action string, id uint) {
	if s.activity == nil {
		return
	}
	adminID := actor.ID
	entry := ActivityEntry{
		AdminID:      &adminID,
		Action:       action,
		ResourceType: "category",
		ResourceID:   &id,
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record category activity")
	}
}
