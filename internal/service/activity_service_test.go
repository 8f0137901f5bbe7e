package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/institute-api/internal/cache"
	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/models"
	"github.com/noah-isme/institute-api/internal/repository"
)

type stubActivityRepo struct {
	mu         sync.Mutex
	entries    []models.ActivityLog
	lastCutoff time.Time
}

func (r *stubActivityRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uint(len(r.entries) + 1)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubActivityRepo) List(_ context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.ActivityLog
	for _, entry := range r.entries {
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.AdminID != nil && (entry.AdminID == nil || *entry.AdminID != *filter.AdminID) {
			continue
		}
		out = append(out, entry)
	}
	return out, int64(len(out)), nil
}

func (r *stubActivityRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastCutoff = cutoff

	var kept []models.ActivityLog
	var removed int64
	for _, entry := range r.entries {
		if entry.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	r.entries = kept
	return removed, nil
}

func (r *stubActivityRepo) CountSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, entry := range r.entries {
		if !entry.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *stubActivityRepo) CountByAction(_ context.Context, action string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, entry := range r.entries {
		if entry.Action == action && !entry.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func newActivityService(repo *stubActivityRepo) *activityService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewActivityService(repo, cache.New(nil, nil, "institute", testLogger()), time.Minute, validate, testLogger())
	return svc.(*activityService)
}

func TestActivityRecordNormalizesAndValidates(t *testing.T) {
	repo := &stubActivityRepo{}
	svc := newActivityService(repo)

	adminID := uint(5)
	require.NoError(t, svc.Record(context.Background(), ActivityEntry{
		AdminID:      &adminID,
		Action:       "  Created ",
		ResourceType: " Event ",
	}))

	require.Len(t, repo.entries, 1)
	require.Equal(t, "created", repo.entries[0].Action)
	require.Equal(t, "event", repo.entries[0].ResourceType)

	require.Error(t, svc.Record(context.Background(), ActivityEntry{ResourceType: "event"}))
	require.Error(t, svc.Record(context.Background(), ActivityEntry{Action: "created"}))
}

func TestActivityRecordMasksSensitiveDetails(t *testing.T) {
	repo := &stubActivityRepo{}
	svc := newActivityService(repo)

	require.NoError(t, svc.Record(context.Background(), ActivityEntry{
		Action:       "updated",
		ResourceType: "setting",
		Details: map[string]interface{}{
			"key":           "contact_email",
			"contact_email": "dean@institute.example",
			"api_token":     "tok_12345",
			"jwt_secret":    "hunter2",
		},
	}))

	details := repo.entries[0].Details
	require.Equal(t, "contact_email", details["key"])
	require.Equal(t, "***", details["contact_email"])
	require.Equal(t, "***", details["api_token"])
	require.Equal(t, "***", details["jwt_secret"])
}

func TestActivityCleanupRecordsItself(t *testing.T) {
	repo := &stubActivityRepo{}
	svc := newActivityService(repo)

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	old := models.ActivityLog{Action: "created", ResourceType: "event", CreatedAt: now.AddDate(0, 0, -120)}
	recent := models.ActivityLog{Action: "updated", ResourceType: "event", CreatedAt: now.AddDate(0, 0, -3)}
	require.NoError(t, repo.Create(context.Background(), &old))
	require.NoError(t, repo.Create(context.Background(), &recent))

	result, err := svc.Cleanup(context.Background(), 90, ActivityActor{ID: 2})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Removed)
	require.True(t, repo.lastCutoff.Equal(now.AddDate(0, 0, -90)))

	// The surviving recent entry plus the self-recorded cleanup entry.
	require.Len(t, repo.entries, 2)
	last := repo.entries[len(repo.entries)-1]
	require.Equal(t, "cleanup", last.Action)
	require.Equal(t, "activity_log", last.ResourceType)
	require.EqualValues(t, 90, last.Details["older_than_days"])

	_, err = svc.Cleanup(context.Background(), 0, ActivityActor{ID: 2})
	require.Error(t, err)
}

func TestActivityStatsAggregatesTrackedActions(t *testing.T) {
	repo := &stubActivityRepo{}
	svc := newActivityService(repo)

	now := time.Now()
	for _, action := range []string{"created", "created", "deleted"} {
		require.NoError(t, repo.Create(context.Background(), &models.ActivityLog{
			Action:       action,
			ResourceType: "event",
			CreatedAt:    now.Add(-time.Hour),
		}))
	}
	require.NoError(t, repo.Create(context.Background(), &models.ActivityLog{
		Action:       "created",
		ResourceType: "event",
		CreatedAt:    now.AddDate(0, 0, -30),
	}))

	stats, err := svc.Stats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalRecent)
	require.Equal(t, int64(2), stats.ByAction["created"])
	require.Equal(t, int64(1), stats.ByAction["deleted"])
	require.Equal(t, int64(0), stats.ByAction["approved"])
	require.Equal(t, 7, stats.WindowDays)
}

func TestActivityListFiltersByAdmin(t *testing.T) {
	repo := &stubActivityRepo{}
	svc := newActivityService(repo)

	first := uint(1)
	second := uint(2)
	require.NoError(t, repo.Create(context.Background(), &models.ActivityLog{AdminID: &first, Action: "created", ResourceType: "event"}))
	require.NoError(t, repo.Create(context.Background(), &models.ActivityLog{AdminID: &second, Action: "deleted", ResourceType: "sponsor"}))

	result, err := svc.List(context.Background(), dto.ActivityListRequest{AdminID: 2})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, "deleted", result.Items[0].Action)
	require.Equal(t, int64(1), result.Pagination.TotalItems)
}
