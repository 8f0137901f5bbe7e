package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/institute-api/internal/cache"
	"github.com/noah-isme/institute-api/internal/models"
)

func TestAnalyticsSummaryAggregatesCounts(t *testing.T) {
	events := newStubEventRepo()
	achievements := newStubAchievementRepo()
	testimonials := newStubTestimonialRepo()
	sponsors := newStubSponsorRepo()
	activity := &stubActivityRepo{}

	svc := NewAnalyticsService(events, achievements, testimonials, sponsors, activity,
		cache.New(nil, nil, "institute", testLogger()), time.Minute, testLogger()).(*analyticsService)

	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, events.Create(ctx, &models.Event{Title: "Open Day", Date: now.AddDate(0, 0, 3), Status: models.EventStatusPublished}))
	require.NoError(t, events.Create(ctx, &models.Event{Title: "Unannounced", Date: now.AddDate(0, 0, 5), Status: models.EventStatusDraft}))
	require.NoError(t, achievements.Create(ctx, &models.Achievement{Title: "Robotics Gold", Status: models.AchievementStatusPublished, DateAchieved: now}))
	require.NoError(t, testimonials.Create(ctx, &models.Testimonial{StudentName: "Waiting", Story: "pending review", Status: models.TestimonialStatusPending}))
	require.NoError(t, testimonials.Create(ctx, &models.Testimonial{StudentName: "Visible", Story: "approved story", Status: models.TestimonialStatusApproved}))
	require.NoError(t, sponsors.Create(ctx, &models.Sponsor{Name: "Acme Microchips", Tier: models.SponsorTierGold, Status: models.SponsorStatusActive}))
	require.NoError(t, sponsors.Create(ctx, &models.Sponsor{Name: "Dormant Cloud", Tier: models.SponsorTierPlatinum, Status: models.SponsorStatusInactive}))
	require.NoError(t, activity.Create(ctx, &models.ActivityLog{Action: "created", ResourceType: "event", CreatedAt: now.AddDate(0, 0, -2)}))
	require.NoError(t, activity.Create(ctx, &models.ActivityLog{Action: "deleted", ResourceType: "event", CreatedAt: now.AddDate(0, 0, -10)}))

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), summary.PublishedEvents)
	require.Equal(t, int64(1), summary.DraftEvents)
	require.Equal(t, int64(1), summary.UpcomingEvents)
	require.Equal(t, int64(1), summary.PublishedAchievements)
	require.Equal(t, int64(1), summary.PendingTestimonials)
	require.Equal(t, int64(1), summary.ApprovedTestimonials)
	require.Equal(t, int64(1), summary.ActiveSponsorsByTier[models.SponsorTierGold])
	require.Equal(t, int64(0), summary.ActiveSponsorsByTier[models.SponsorTierPlatinum])
	require.Equal(t, int64(1), summary.RecentAdminActions)
	require.True(t, summary.GeneratedAt.Equal(now))
	require.False(t, summary.CacheHit)
}

func TestAnalyticsSummaryServesCachedSnapshot(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	defer client.Close()

	events := newStubEventRepo()
	svc := NewAnalyticsService(events, newStubAchievementRepo(), newStubTestimonialRepo(), newStubSponsorRepo(), &stubActivityRepo{},
		cache.New(client, nil, "institute", testLogger()), time.Minute, testLogger())

	ctx := context.Background()
	require.NoError(t, events.Create(ctx, &models.Event{Title: "Open Day", Date: time.Now().AddDate(0, 0, 3), Status: models.EventStatusPublished}))

	first, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Equal(t, int64(1), first.PublishedEvents)

	// A write after the snapshot stays invisible until the entry expires.
	require.NoError(t, events.Create(ctx, &models.Event{Title: "Late Addition", Date: time.Now().AddDate(0, 0, 4), Status: models.EventStatusPublished}))

	second, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, int64(1), second.PublishedEvents)
}
