package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/institute-api/internal/cache"
	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/models"
	"github.com/noah-isme/institute-api/internal/repository"
)

const analyticsCachePrefix = "analytics"

var sponsorTiers = []string{
	models.SponsorTierPlatinum,
	models.SponsorTierGold,
	models.SponsorTierSilver,
	models.SponsorTierBronze,
	models.SponsorTierPartner,
}

// AnalyticsService assembles the admin dashboard summary from independent
// count queries across every content repository.
type AnalyticsService interface {
	Summary(ctx context.Context) (dto.AnalyticsSummaryResponse, error)
}

type analyticsService struct {
	events       repository.EventRepository
	achievements repository.AchievementRepository
	testimonials repository.TestimonialRepository
	sponsors     repository.SponsorRepository
	activity     repository.ActivityLogRepository
	cache        cache.QueryCache
	ttl          time.Duration
	tracer       trace.Tracer
	logger       zerolog.Logger
	now          func() time.Time
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(
	events repository.EventRepository,
	achievements repository.AchievementRepository,
	testimonials repository.TestimonialRepository,
	sponsors repository.SponsorRepository,
	activity repository.ActivityLogRepository,
	queryCache cache.QueryCache,
	ttl time.Duration,
	logger zerolog.Logger,
) AnalyticsService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &analyticsService{
		events:       events,
		achievements: achievements,
		testimonials: testimonials,
		sponsors:     sponsors,
		activity:     activity,
		cache:        queryCache,
		ttl:          ttl,
		tracer:       otel.Tracer("institute-api/analytics"),
		logger:       logger.With().Str("component", "analytics_service").Logger(),
		now:          time.Now,
	}
}

func (s *analyticsService) Summary(ctx context.Context) (dto.AnalyticsSummaryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.summary")
	defer span.End()

	key := analyticsCachePrefix + ":summary:v1"
	payload, hit, err := s.cache.GetOrFetch(ctx, key, s.ttl, func(ctx context.Context) ([]byte, error) {
		summary, err := s.collect(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(summary)
	})
	if err != nil {
		return dto.AnalyticsSummaryResponse{}, err
	}
	span.SetAttributes(attribute.Bool("cache.hit", hit))

	var response dto.AnalyticsSummaryResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return dto.AnalyticsSummaryResponse{}, err
	}
	response.CacheHit = hit
	return response, nil
}

func (s *analyticsService) collect(ctx context.Context) (dto.AnalyticsSummaryResponse, error) {
	now := s.now()
	summary := dto.AnalyticsSummaryResponse{
		ActiveSponsorsByTier: make(map[string]int64, len(sponsorTiers)),
		GeneratedAt:          now.UTC(),
	}

	var err error
	if summary.PublishedEvents, err = s.events.CountByStatus(ctx, models.EventStatusPublished); err != nil {
		return summary, err
	}
	if summary.DraftEvents, err = s.events.CountByStatus(ctx, models.EventStatusDraft); err != nil {
		return summary, err
	}
	if summary.UpcomingEvents, err = s.events.CountUpcoming(ctx, now); err != nil {
		return summary, err
	}
	if summary.PublishedAchievements, err = s.achievements.Count(ctx, repository.AchievementFilter{Status: models.AchievementStatusPublished}); err != nil {
		return summary, err
	}
	if summary.PendingTestimonials, err = s.testimonials.CountByStatus(ctx, models.TestimonialStatusPending); err != nil {
		return summary, err
	}
	if summary.ApprovedTestimonials, err = s.testimonials.CountByStatus(ctx, models.TestimonialStatusApproved); err != nil {
		return summary, err
	}
	for _, tier := range sponsorTiers {
		count, err := s.sponsors.CountByTier(ctx, tier)
		if err != nil {
			return summary, err
		}
		summary.ActiveSponsorsByTier[tier] = count
	}
	if summary.RecentAdminActions, err = s.activity.CountSince(ctx, now.AddDate(0, 0, -7)); err != nil {
		return summary, err
	}

	return summary, nil
}
