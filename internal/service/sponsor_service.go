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

// ErrSponsorNotFound indicates a missing sponsor.
var ErrSponsorNotFound = errors.New("sponsor not found")

// ErrEventSponsorNotFound indicates a missing event-sponsor link.
var ErrEventSponsorNotFound = errors.New("event sponsor link not found")

// SponsorService manages sponsors and their per-event links.
type SponsorService interface {
	ListActive(ctx context.Context, tier string, page, pageSize int) (dto.SponsorListResponse, error)
	AdminList(ctx context.Context, req dto.SponsorListRequest) (dto.SponsorListResponse, error)
	GetByID(ctx context.Context, id uint) (dto.SponsorResponse, error)
	Create(ctx context.Context, payload dto.SponsorCreateRequest, actor ActivityActor) (dto.SponsorResponse, error)
	Update(ctx context.Context, id uint, payload dto.SponsorUpdateRequest, actor ActivityActor) (dto.SponsorResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
	ListForEvent(ctx context.Context, eventID uint) ([]dto.EventSponsorResponse, error)
	LinkToEvent(ctx context.Context, eventID uint, payload dto.EventSponsorLinkRequest, actor ActivityActor) (dto.EventSponsorResponse, error)
	UpdateLink(ctx context.Context, linkID uint, payload dto.EventSponsorLinkRequest, actor ActivityActor) (dto.EventSponsorResponse, error)
	UnlinkFromEvent(ctx context.Context, linkID uint, actor ActivityActor) error
}

const sponsorCachePrefix = "sponsors"

type sponsorService struct {
	repo      repository.SponsorRepository
	events    repository.EventRepository
	cache     cache.QueryCache
	ttl       time.Duration
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewSponsorService constructs the sponsor service.
func NewSponsorService(repo repository.SponsorRepository, events repository.EventRepository, queryCache cache.QueryCache, ttl time.Duration, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) SponsorService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &sponsorService{
		repo:      repo,
		events:    events,
		cache:     queryCache,
		ttl:       ttl,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "sponsor_service").Logger(),
	}
}

func (s *sponsorService) ListActive(ctx context.Context, tier string, page, pageSize int) (dto.SponsorListResponse, error) {
	filter := repository.SponsorFilter{
		Status:   models.SponsorStatusActive,
		Tier:     strings.TrimSpace(tier),
		Page:     normalizePage(page),
		PageSize: clampPageSize(pageSize),
	}

	key := fmt.Sprintf("%s:list:v1:active:%s:%d:%d", sponsorCachePrefix, filter.Tier, filter.Page, filter.PageSize)
	payload, hit, err := s.cache.GetOrFetch(ctx, key, s.ttl, func(ctx context.Context) ([]byte, error) {
		response, err := s.fetchList(ctx, filter)
		if err != nil {
			return nil, err
		}
		return json.Marshal(response)
	})
	if err != nil {
		return dto.SponsorListResponse{}, err
	}

	var response dto.SponsorListResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return dto.SponsorListResponse{}, err
	}
	response.CacheHit = hit
	return response, nil
}

func (s *sponsorService) AdminList(ctx context.Context, req dto.SponsorListRequest) (dto.SponsorListResponse, error) {
	filter := repository.SponsorFilter{
		Status:   strings.TrimSpace(req.Status),
		Tier:     strings.TrimSpace(req.Tier),
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}
	return s.fetchList(ctx, filter)
}

func (s *sponsorService) fetchList(ctx context.Context, filter repository.SponsorFilter) (dto.SponsorListResponse, error) {
	sponsors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.SponsorListResponse{}, err
	}

	items := make([]dto.SponsorResponse, 0, len(sponsors))
	for _, sponsor := range sponsors {
		items = append(items, dto.NewSponsorResponse(sponsor))
	}

	return dto.SponsorListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalItems: total,
			TotalPages: calculateTotalPages(total, filter.PageSize),
		},
	}, nil
}

func (s *sponsorService) GetByID(ctx context.Context, id uint) (dto.SponsorResponse, error) {
	sponsor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SponsorResponse{}, ErrSponsorNotFound
		}
		return dto.SponsorResponse{}, err
	}
	return dto.NewSponsorResponse(sponsor), nil
}

func (s *sponsorService) Create(ctx context.Context, payload dto.SponsorCreateRequest, actor ActivityActor) (dto.SponsorResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SponsorResponse{}, err
	}

	tier := payload.Tier
	if tier == "" {
		tier = models.SponsorTierPartner
	}
	status := payload.Status
	if status == "" {
		status = models.SponsorStatusActive
	}

	sponsor := models.Sponsor{
		Name:         strings.TrimSpace(payload.Name),
		LogoURL:      strings.TrimSpace(payload.LogoURL),
		Website:      strings.TrimSpace(payload.Website),
		Description:  strings.TrimSpace(payload.Description),
		ContactEmail: strings.TrimSpace(payload.ContactEmail),
		ContactPhone: strings.TrimSpace(payload.ContactPhone),
		Tier:         tier,
		Status:       status,
	}

	if err := s.repo.Create(ctx, &sponsor); err != nil {
		return dto.SponsorResponse{}, err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "created", "sponsor", sponsor.ID)
	return dto.NewSponsorResponse(sponsor), nil
}

func (s *sponsorService) Update(ctx context.Context, id uint, payload dto.SponsorUpdateRequest, actor ActivityActor) (dto.SponsorResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SponsorResponse{}, err
	}

	sponsor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SponsorResponse{}, ErrSponsorNotFound
		}
		return dto.SponsorResponse{}, err
	}

	if payload.Name != nil {
		sponsor.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.LogoURL != nil {
		sponsor.LogoURL = strings.TrimSpace(*payload.LogoURL)
	}
	if payload.Website != nil {
		sponsor.Website = strings.TrimSpace(*payload.Website)
	}
	if payload.Description != nil {
		sponsor.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.ContactEmail != nil {
		sponsor.ContactEmail = strings.TrimSpace(*payload.ContactEmail)
	}
	if payload.ContactPhone != nil {
		sponsor.ContactPhone = strings.TrimSpace(*payload.ContactPhone)
	}
	if payload.Tier != nil {
		sponsor.Tier = *payload.Tier
	}
	if payload.Status != nil {
		sponsor.Status = *payload.Status
	}

	if err := s.repo.Update(ctx, &sponsor); err != nil {
		return dto.SponsorResponse{}, err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "updated", "sponsor", sponsor.ID)
	return dto.NewSponsorResponse(sponsor), nil
}

func (s *sponsorService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSponsorNotFound
		}
		return err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "deleted", "sponsor", id)
	return nil
}

func (s *sponsorService) ListForEvent(ctx context.Context, eventID uint) ([]dto.EventSponsorResponse, error) {
	key := fmt.Sprintf("%s:event:v1:%d", sponsorCachePrefix, eventID)
	payload, _, err := s.cache.GetOrFetch(ctx, key, s.ttl, func(ctx context.Context) ([]byte, error) {
		links, err := s.repo.ListForEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}

		items := make([]dto.EventSponsorResponse, 0, len(links))
		for _, link := range links {
			items = append(items, dto.NewEventSponsorResponse(link))
		}
		return json.Marshal(items)
	})
	if err != nil {
		return nil, err
	}

	var items []dto.EventSponsorResponse
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *sponsorService) LinkToEvent(ctx context.Context, eventID uint, payload dto.EventSponsorLinkRequest, actor ActivityActor) (dto.EventSponsorResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventSponsorResponse{}, err
	}

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventSponsorResponse{}, ErrEventNotFound
		}
		return dto.EventSponsorResponse{}, err
	}
	if _, err := s.repo.GetByID(ctx, payload.SponsorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventSponsorResponse{}, ErrSponsorNotFound
		}
		return dto.EventSponsorResponse{}, err
	}

	link := models.EventSponsor{
		EventID:           eventID,
		SponsorID:         payload.SponsorID,
		SponsorTier:       payload.SponsorTier,
		IsFeatured:        payload.IsFeatured,
		CustomDescription: strings.TrimSpace(payload.CustomDescription),
		DisplayOrder:      payload.DisplayOrder,
	}

	if err := s.repo.LinkToEvent(ctx, &link); err != nil {
		return dto.EventSponsorResponse{}, err
	}

	hydrated, err := s.repo.GetLink(ctx, link.ID)
	if err == nil {
		link = hydrated
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "created", "event_sponsor", link.ID)
	return dto.NewEventSponsorResponse(link), nil
}

func (s *sponsorService) UpdateLink(ctx context.Context, linkID uint, payload dto.EventSponsorLinkRequest, actor ActivityActor) (dto.EventSponsorResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventSponsorResponse{}, err
	}

	link, err := s.repo.GetLink(ctx, linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventSponsorResponse{}, ErrEventSponsorNotFound
		}
		return dto.EventSponsorResponse{}, err
	}

	link.SponsorTier = payload.SponsorTier
	link.IsFeatured = payload.IsFeatured
	link.CustomDescription = strings.TrimSpace(payload.CustomDescription)
	link.DisplayOrder = payload.DisplayOrder

	if err := s.repo.UpdateLink(ctx, &link); err != nil {
		return dto.EventSponsorResponse{}, err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "updated", "event_sponsor", link.ID)
	return dto.NewEventSponsorResponse(link), nil
}

func (s *sponsorService) UnlinkFromEvent(ctx context.Context, linkID uint, actor ActivityActor) error {
	if err := s.repo.UnlinkFromEvent(ctx, linkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventSponsorNotFound
		}
		return err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "deleted", "event_sponsor", linkID)
	return nil
}

func (s *sponsorService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, sponsorCachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate sponsor cache")
	}
}

func (s *sponsorService) recordActivity(ctx context.Context, actor ActivityActor, action, resourceType string, id uint) {
	if s.activity == nil {
		return
	}
	adminID := actor.ID
	entry := ActivityEntry{
		AdminID:      &adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   &id,
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record sponsor activity")
	}
}
