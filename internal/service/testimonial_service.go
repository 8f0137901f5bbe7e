package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/cache"
	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/models"
	"github.com/noah-isme/institute-api/internal/repository"
)

// ErrTestimonialNotFound indicates a missing testimonial.
var ErrTestimonialNotFound = errors.New("testimonial not found")

// ErrTestimonialAlreadyModerated indicates the testimonial left pending state.
var ErrTestimonialAlreadyModerated = errors.New("testimonial has already been moderated")

// TestimonialService covers public submission, public listing and admin moderation.
type TestimonialService interface {
	ListApproved(ctx context.Context, featured *bool, page, pageSize int) (dto.TestimonialListResponse, error)
	AdminList(ctx context.Context, req dto.TestimonialListRequest) (dto.TestimonialListResponse, error)
	GetByID(ctx context.Context, id uint) (dto.TestimonialResponse, error)
	Submit(ctx context.Context, payload dto.TestimonialSubmitRequest) (dto.TestimonialResponse, error)
	Update(ctx context.Context, id uint, payload dto.TestimonialUpdateRequest, actor ActivityActor) (dto.TestimonialResponse, error)
	Approve(ctx context.Context, id uint, actor ActivityActor) (dto.TestimonialResponse, error)
	Reject(ctx context.Context, id uint, reason string, actor ActivityActor) (dto.TestimonialResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
}

const testimonialCachePrefix = "testimonials"

type testimonialService struct {
	repo      repository.TestimonialRepository
	cache     cache.QueryCache
	ttl       time.Duration
	validator *validator.Validate
	activity  ActivityRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewTestimonialService constructs the testimonial service.
func NewTestimonialService(repo repository.TestimonialRepository, queryCache cache.QueryCache, ttl time.Duration, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) TestimonialService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &testimonialService{
		repo:      repo,
		cache:     queryCache,
		ttl:       ttl,
		validator: validate,
		activity:  activity,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "testimonial_service").Logger(),
		now:       time.Now,
	}
}

func (s *testimonialService) ListApproved(ctx context.Context, featured *bool, page, pageSize int) (dto.TestimonialListResponse, error) {
	filter := repository.TestimonialFilter{
		Status:   models.TestimonialStatusApproved,
		Featured: featured,
		Page:     normalizePage(page),
		PageSize: clampPageSize(pageSize),
	}

	featuredKey := "any"
	if featured != nil {
		featuredKey = fmt.Sprintf("%t", *featured)
	}
	key := fmt.Sprintf("%s:list:v1:approved:%s:%d:%d", testimonialCachePrefix, featuredKey, filter.Page, filter.PageSize)

	payload, hit, err := s.cache.GetOrFetch(ctx, key, s.ttl, func(ctx context.Context) ([]byte, error) {
		response, err := s.fetchList(ctx, filter)
		if err != nil {
			return nil, err
		}
		return json.Marshal(response)
	})
	if err != nil {
		return dto.TestimonialListResponse{}, err
	}

	var response dto.TestimonialListResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return dto.TestimonialListResponse{}, err
	}
	response.CacheHit = hit
	return response, nil
}

func (s *testimonialService) AdminList(ctx context.Context, req dto.TestimonialListRequest) (dto.TestimonialListResponse, error) {
	filter := repository.TestimonialFilter{
		Status:   strings.TrimSpace(req.Status),
		Featured: req.Featured,
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}
	return s.fetchList(ctx, filter)
}

func (s *testimonialService) fetchList(ctx context.Context, filter repository.TestimonialFilter) (dto.TestimonialListResponse, error) {
	testimonials, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.TestimonialListResponse{}, err
	}

	items := make([]dto.TestimonialResponse, 0, len(testimonials))
	for _, testimonial := range testimonials {
		items = append(items, dto.NewTestimonialResponse(testimonial))
	}

	return dto.TestimonialListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalItems: total,
			TotalPages: calculateTotalPages(total, filter.PageSize),
		},
	}, nil
}

func (s *testimonialService) GetByID(ctx context.Context, id uint) (dto.TestimonialResponse, error) {
	testimonial, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestimonialResponse{}, ErrTestimonialNotFound
		}
		return dto.TestimonialResponse{}, err
	}
	return dto.NewTestimonialResponse(testimonial), nil
}

// Submit accepts a public story. Whatever the client claims, the row lands in
// pending state and stays invisible until moderated.
func (s *testimonialService) Submit(ctx context.Context, payload dto.TestimonialSubmitRequest) (dto.TestimonialResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestimonialResponse{}, err
	}

	story := strings.TrimSpace(s.sanitizer.Sanitize(payload.Story))
	if story == "" {
		return dto.TestimonialResponse{}, errors.New("story empty after sanitization")
	}

	testimonial := models.Testimonial{
		StudentName:     strings.TrimSpace(payload.StudentName),
		Story:           story,
		Program:         strings.TrimSpace(payload.Program),
		GraduationYear:  payload.GraduationYear,
		CurrentPosition: strings.TrimSpace(payload.CurrentPosition),
		Company:         strings.TrimSpace(payload.Company),
		PhotoURL:        strings.TrimSpace(payload.PhotoURL),
		Status:          models.TestimonialStatusPending,
	}

	if err := s.repo.Create(ctx, &testimonial); err != nil {
		return dto.TestimonialResponse{}, err
	}

	s.invalidate(ctx)
	return dto.NewTestimonialResponse(testimonial), nil
}

func (s *testimonialService) Update(ctx context.Context, id uint, payload dto.TestimonialUpdateRequest, actor ActivityActor) (dto.TestimonialResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestimonialResponse{}, err
	}

	testimonial, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestimonialResponse{}, ErrTestimonialNotFound
		}
		return dto.TestimonialResponse{}, err
	}

	if payload.StudentName != nil {
		testimonial.StudentName = strings.TrimSpace(*payload.StudentName)
	}
	if payload.Story != nil {
		testimonial.Story = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Story))
	}
	if payload.Program != nil {
		testimonial.Program = strings.TrimSpace(*payload.Program)
	}
	if payload.GraduationYear != nil {
		testimonial.GraduationYear = *payload.GraduationYear
	}
	if payload.CurrentPosition != nil {
		testimonial.CurrentPosition = strings.TrimSpace(*payload.CurrentPosition)
	}
	if payload.Company != nil {
		testimonial.Company = strings.TrimSpace(*payload.Company)
	}
	if payload.PhotoURL != nil {
		testimonial.PhotoURL = strings.TrimSpace(*payload.PhotoURL)
	}
	if payload.IsFeatured != nil {
		testimonial.IsFeatured = *payload.IsFeatured
	}
	if payload.SortOrder != nil {
		testimonial.SortOrder = *payload.SortOrder
	}

	if err := s.repo.Update(ctx, &testimonial); err != nil {
		return dto.TestimonialResponse{}, err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "updated", testimonial.ID)
	return dto.NewTestimonialResponse(testimonial), nil
}

func (s *testimonialService) Approve(ctx context.Context, id uint, actor ActivityActor) (dto.TestimonialResponse, error) {
	testimonial, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestimonialResponse{}, ErrTestimonialNotFound
		}
		return dto.TestimonialResponse{}, err
	}

	if testimonial.Status != models.TestimonialStatusPending {
		return dto.TestimonialResponse{}, ErrTestimonialAlreadyModerated
	}

	approvedAt := s.now()
	adminID := actor.ID
	testimonial.Status = models.TestimonialStatusApproved
	testimonial.ApprovedAt = &approvedAt
	testimonial.ApprovedBy = &adminID
	testimonial.RejectionReason = ""

	if err := s.repo.Update(ctx, &testimonial); err != nil {
		return dto.TestimonialResponse{}, err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "approved", testimonial.ID)
	return dto.NewTestimonialResponse(testimonial), nil
}

func (s *testimonialService) Reject(ctx context.Context, id uint, reason string, actor ActivityActor) (dto.TestimonialResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return dto.TestimonialResponse{}, errors.New("rejection reason is required")
	}

	testimonial, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestimonialResponse{}, ErrTestimonialNotFound
		}
		return dto.TestimonialResponse{}, err
	}

	if testimonial.Status != models.TestimonialStatusPending {
		return dto.TestimonialResponse{}, ErrTestimonialAlreadyModerated
	}

	testimonial.Status = models.TestimonialStatusRejected
	testimonial.RejectionReason = reason
	testimonial.ApprovedAt = nil
	testimonial.ApprovedBy = nil

	if err := s.repo.Update(ctx, &testimonial); err != nil {
		return dto.TestimonialResponse{}, err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "rejected", testimonial.ID)
	return dto.NewTestimonialResponse(testimonial), nil
}

func (s *testimonialService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTestimonialNotFound
		}
		return err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "deleted", id)
	return nil
}

func (s *testimonialService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, testimonialCachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate testimonial cache")
	}
}

func (s *testimonialService) recordActivity(ctx context.Context, actor ActivityActor, action string, id uint) {
	if s.activity == nil {
		return
	}
	adminID := actor.ID
	entry := ActivityEntry{
		AdminID:      &adminID,
		Action:       action,
		ResourceType: "testimonial",
		ResourceID:   &id,
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record testimonial activity")
	}
}
