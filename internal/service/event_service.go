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
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/cache"
	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/models"
	"github.com/noah-isme/institute-api/internal/repository"
)

// ErrEventNotFound indicates a missing event.
var ErrEventNotFound = errors.New("event not found")

// EventService exposes event operations for the public site and admin panel.
type EventService interface {
	List(ctx context.Context, req dto.EventListRequest) (dto.EventListResponse, error)
	AdminList(ctx context.Context, req dto.EventListRequest) (dto.EventListResponse, error)
	GetByID(ctx context.Context, id uint) (dto.EventResponse, error)
	Create(ctx context.Context, payload dto.EventCreateRequest, actor ActivityActor) (dto.EventResponse, error)
	Update(ctx context.Context, id uint, payload dto.EventUpdateRequest, actor ActivityActor) (dto.EventResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
}

const eventCachePrefix = "events"

type eventService struct {
	repo            repository.EventRepository
	cache           cache.QueryCache
	ttl             time.Duration
	validator       *validator.Validate
	activity        ActivityRecorder
	registrationURL string
	policy          *bluemonday.Policy
	logger          zerolog.Logger
	now             func() time.Time
}

// NewEventService constructs the event service. registrationURL is the legacy
// external registration fallback used when an event has no custom link.
func NewEventService(repo repository.EventRepository, queryCache cache.QueryCache, ttl time.Duration, validate *validator.Validate, activity ActivityRecorder, registrationURL string, logger zerolog.Logger) EventService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("p", "strong", "em", "a", "ul", "ol", "li", "br")
	policy.AllowAttrs("href", "title", "target").OnElements("a")

	return &eventService{
		repo:            repo,
		cache:           queryCache,
		ttl:             ttl,
		validator:       validate,
		activity:        activity,
		registrationURL: strings.TrimSpace(registrationURL),
		policy:          policy,
		logger:          logger.With().Str("component", "event_service").Logger(),
		now:             time.Now,
	}
}

// ResolveRegistrationLink picks the link registrants should use: the event's
// own link wins, the configured external URL is the legacy fallback.
func ResolveRegistrationLink(event models.Event, fallbackURL string) string {
	if link := strings.TrimSpace(event.RegistrationLink); link != "" {
		return link
	}
	return strings.TrimSpace(fallbackURL)
}

// IsRegistrable reports whether an event currently accepts registrations.
// It is a display predicate computed from the snapshot; the server never
// enforces capacity because registration happens on an external site.
func IsRegistrable(event models.Event, fallbackURL string, now time.Time) bool {
	if !event.RegistrationRequired {
		return false
	}
	if ResolveRegistrationLink(event, fallbackURL) == "" {
		return false
	}
	if !event.Date.After(now) {
		return false
	}
	if event.Capacity != nil && event.RegisteredCount >= *event.Capacity {
		return false
	}
	return true
}

func (s *eventService) List(ctx context.Context, req dto.EventListRequest) (dto.EventListResponse, error) {
	// Public reads only ever see published events.
	req.Status = models.EventStatusPublished

	filter := s.buildFilter(req)
	key := s.listCacheKey(filter, req)

	payload, hit, err := s.cache.GetOrFetch(ctx, key, s.ttl, func(ctx context.Context) ([]byte, error) {
		response, err := s.fetchList(ctx, filter)
		if err != nil {
			return nil, err
		}
		return json.Marshal(response)
	})
	if err != nil {
		return dto.EventListResponse{}, err
	}

	var response dto.EventListResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return dto.EventListResponse{}, err
	}
	response.CacheHit = hit
	return response, nil
}

func (s *eventService) AdminList(ctx context.Context, req dto.EventListRequest) (dto.EventListResponse, error) {
	return s.fetchList(ctx, s.buildFilter(req))
}

func (s *eventService) buildFilter(req dto.EventListRequest) repository.EventFilter {
	return repository.EventFilter{
		Status:     req.Status,
		Type:       strings.TrimSpace(req.Type),
		CategoryID: req.CategoryID,
		Featured:   req.Featured,
		From:       req.From,
		To:         req.To,
		Upcoming:   req.Upcoming,
		Page:       normalizePage(req.Page),
		PageSize:   clampPageSize(req.PageSize),
	}
}

func (s *eventService) listCacheKey(filter repository.EventFilter, req dto.EventListRequest) string {
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
	return fmt.Sprintf("%s:list:v1:%s:%s:%s:%s:%t:%s:%d:%d",
		eventCachePrefix, filter.Status, filter.Type, categoryKey, featuredKey, filter.Upcoming, rangeKey, filter.Page, filter.PageSize)
}

func (s *eventService) fetchList(ctx context.Context, filter repository.EventFilter) (dto.EventListResponse, error) {
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.EventListResponse{}, err
	}

	now := s.now()
	items := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		items = append(items, dto.NewEventResponse(event, IsRegistrable(event, s.registrationURL, now)))
	}

	return dto.EventListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalItems: total,
			TotalPages: calculateTotalPages(total, filter.PageSize),
		},
	}, nil
}

func (s *eventService) GetByID(ctx context.Context, id uint) (dto.EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventResponse{}, ErrEventNotFound
		}
		return dto.EventResponse{}, err
	}

	return dto.NewEventResponse(event, IsRegistrable(event, s.registrationURL, s.now())), nil
}

func (s *eventService) Create(ctx context.Context, payload dto.EventCreateRequest, actor ActivityActor) (dto.EventResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventResponse{}, err
	}

	status := payload.Status
	if status == "" {
		status = models.EventStatusDraft
	}

	adminID := actor.ID
	event := models.Event{
		Title:                strings.TrimSpace(payload.Title),
		Description:          s.policy.Sanitize(payload.Description),
		LongDescription:      s.policy.Sanitize(payload.LongDescription),
		Date:                 payload.Date,
		EndDate:              payload.EndDate,
		Location:             strings.TrimSpace(payload.Location),
		Type:                 payload.Type,
		CategoryID:           payload.CategoryID,
		ImageURL:             strings.TrimSpace(payload.ImageURL),
		RegistrationRequired: payload.RegistrationRequired,
		RegistrationLink:     strings.TrimSpace(payload.RegistrationLink),
		Capacity:             payload.Capacity,
		Speakers:             encodeStringSlice(payload.Speakers),
		Schedule:             encodeSchedule(payload.Schedule),
		Tags:                 encodeStringSlice(payload.Tags),
		IsFeatured:           payload.IsFeatured,
		Status:               status,
		CreatedBy:            &adminID,
	}

	if err := s.repo.Create(ctx, &event); err != nil {
		return dto.EventResponse{}, err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "created", event.ID)
	return dto.NewEventResponse(event, IsRegistrable(event, s.registrationURL, s.now())), nil
}

func (s *eventService) Update(ctx context.Context, id uint, payload dto.EventUpdateRequest, actor ActivityActor) (dto.EventResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventResponse{}, err
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventResponse{}, ErrEventNotFound
		}
		return dto.EventResponse{}, err
	}

	if payload.Title != nil {
		event.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		event.Description = s.policy.Sanitize(*payload.Description)
	}
	if payload.LongDescription != nil {
		event.LongDescription = s.policy.Sanitize(*payload.LongDescription)
	}
	if payload.Date != nil {
		event.Date = *payload.Date
	}
	if payload.EndDate != nil {
		event.EndDate = payload.EndDate
	}
	if payload.Location != nil {
		event.Location = strings.TrimSpace(*payload.Location)
	}
	if payload.Type != nil {
		event.Type = *payload.Type
	}
	if payload.CategoryID != nil {
		event.CategoryID = payload.CategoryID
	}
	if payload.ImageURL != nil {
		event.ImageURL = strings.TrimSpace(*payload.ImageURL)
	}
	if payload.RegistrationRequired != nil {
		event.RegistrationRequired = *payload.RegistrationRequired
	}
	if payload.RegistrationLink != nil {
		event.RegistrationLink = strings.TrimSpace(*payload.RegistrationLink)
	}
	if payload.Capacity != nil {
		event.Capacity = payload.Capacity
	}
	if payload.RegisteredCount != nil {
		event.RegisteredCount = *payload.RegisteredCount
	}
	if payload.Speakers != nil {
		event.Speakers = encodeStringSlice(*payload.Speakers)
	}
	if payload.Schedule != nil {
		event.Schedule = encodeSchedule(*payload.Schedule)
	}
	if payload.Tags != nil {
		event.Tags = encodeStringSlice(*payload.Tags)
	}
	if payload.IsFeatured != nil {
		event.IsFeatured = *payload.IsFeatured
	}
	if payload.Status != nil {
		event.Status = *payload.Status
	}

	if err := s.repo.Update(ctx, &event); err != nil {
		return dto.EventResponse{}, err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "updated", event.ID)
	return dto.NewEventResponse(event, IsRegistrable(event, s.registrationURL, s.now())), nil
}

func (s *eventService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	s.invalidate(ctx)
	s.recordActivity(ctx, actor, "deleted", id)
	return nil
}

func (s *eventService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, eventCachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate event cache")
	}
}

func (s *eventService) recordActivity(ctx context.Context, actor ActivityActor, action string, id uint) {
	if s.activity == nil {
		return
	}
	adminID := actor.ID
	entry := ActivityEntry{
		AdminID:      &adminID,
		Action:       action,
		ResourceType: "event",
		ResourceID:   &id,
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record event activity")
	}
}

func encodeStringSlice(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(payload)
}

func encodeSchedule(items []models.ScheduleItem) datatypes.JSON {
	if items == nil {
		items = []models.ScheduleItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(payload)
}
