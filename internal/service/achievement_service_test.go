package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/cache"
	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/models"
	"github.com/noah-isme/institute-api/internal/repository"
)

type stubAchievementRepo struct {
	mu         sync.Mutex
	items      map[uint]models.Achievement
	nextID     uint
	lastFilter repository.AchievementFilter
}

func newStubAchievementRepo() *stubAchievementRepo {
	return &stubAchievementRepo{items: make(map[uint]models.Achievement), nextID: 1}
}

func (r *stubAchievementRepo) matches(item models.Achievement, filter repository.AchievementFilter) bool {
	if filter.Status != "" && item.Status != filter.Status {
		return false
	}
	if filter.AchieverType != "" && item.AchieverType != filter.AchieverType {
		return false
	}
	if filter.Featured != nil && item.IsFeatured != *filter.Featured {
		return false
	}
	if filter.From != nil && item.DateAchieved.Before(*filter.From) {
		return false
	}
	return true
}

func (r *stubAchievementRepo) List(_ context.Context, filter repository.AchievementFilter) ([]models.Achievement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter

	var out []models.Achievement
	for _, item := range r.items {
		if r.matches(item, filter) {
			out = append(out, item)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubAchievementRepo) GetByID(_ context.Context, id uint) (models.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return models.Achievement{}, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *stubAchievementRepo) Create(_ context.Context, achievement *models.Achievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	achievement.ID = r.nextID
	r.nextID++
	r.items[achievement.ID] = *achievement
	return nil
}

func (r *stubAchievementRepo) Update(_ context.Context, achievement *models.Achievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[achievement.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.items[achievement.ID] = *achievement
	return nil
}

func (r *stubAchievementRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *stubAchievementRepo) Count(_ context.Context, filter repository.AchievementFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, item := range r.items {
		if r.matches(item, filter) {
			count++
		}
	}
	return count, nil
}

func newAchievementService(repo *stubAchievementRepo, activity ActivityRecorder) *achievementService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAchievementService(repo, cache.New(nil, nil, "institute", testLogger()), time.Minute, time.Minute, validate, activity, testLogger())
	return svc.(*achievementService)
}

func seedAchievement(t *testing.T, repo *stubAchievementRepo, item models.Achievement) models.Achievement {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &item))
	return item
}

func TestAchievementListForcesPublished(t *testing.T) {
	repo := newStubAchievementRepo()
	svc := newAchievementService(repo, nil)

	now := time.Now()
	seedAchievement(t, repo, models.Achievement{
		Title: "Best Paper Award", AchieverName: "Dr. Chen", AchieverType: models.AchieverTypeFaculty,
		Type: models.AchievementTypeAward, DateAchieved: now, Status: models.AchievementStatusPublished,
	})
	seedAchievement(t, repo, models.Achievement{
		Title: "Unannounced Grant", AchieverName: "Dr. Chen", AchieverType: models.AchieverTypeFaculty,
		Type: models.AchievementTypeAward, DateAchieved: now, Status: models.AchievementStatusDraft,
	})

	result, err := svc.List(context.Background(), dto.AchievementListRequest{Status: models.AchievementStatusDraft})
	require.NoError(t, err)
	require.Equal(t, models.AchievementStatusPublished, repo.lastFilter.Status)
	require.Len(t, result.Items, 1)
	require.Equal(t, "Best Paper Award", result.Items[0].Title)
}

func TestAchievementStatsExcludesDrafts(t *testing.T) {
	repo := newStubAchievementRepo()
	svc := newAchievementService(repo, nil)

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	seedAchievement(t, repo, models.Achievement{
		Title: "Robotics Gold", AchieverName: "Team Vega", AchieverType: models.AchieverTypeStudent,
		Type: models.AchievementTypeAward, DateAchieved: now.AddDate(0, 0, -10),
		Status: models.AchievementStatusPublished, IsFeatured: true,
	})
	seedAchievement(t, repo, models.Achievement{
		Title: "Nature Publication", AchieverName: "Dr. Chen", AchieverType: models.AchieverTypeFaculty,
		Type: models.AchievementTypePublication, DateAchieved: now.AddDate(-1, 0, 0),
		Status: models.AchievementStatusPublished,
	})
	seedAchievement(t, repo, models.Achievement{
		Title: "Draft Milestone", AchieverName: "Registrar", AchieverType: models.AchieverTypeInstitution,
		Type: models.AchievementTypeMilestone, DateAchieved: now,
		Status: models.AchievementStatusDraft,
	})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Total)
	require.Equal(t, int64(1), stats.StudentAchievements)
	require.Equal(t, int64(1), stats.FacultyAchievements)
	require.Equal(t, int64(0), stats.InstitutionAchievements)
	require.Equal(t, int64(1), stats.Featured)
	require.Equal(t, int64(1), stats.RecentCount)
}

func TestAchievementCreateDefaultsToDraft(t *testing.T) {
	repo := newStubAchievementRepo()
	activity := &stubActivity{}
	svc := newAchievementService(repo, activity)

	created, err := svc.Create(context.Background(), dto.AchievementCreateRequest{
		Title:        "Hackathon Winners",
		Type:         models.AchievementTypeAward,
		AchieverName: "Team Vega",
		AchieverType: models.AchieverTypeStudent,
		DateAchieved: time.Now(),
	}, ActivityActor{ID: 5})
	require.NoError(t, err)
	require.Equal(t, models.AchievementStatusDraft, created.Status)

	entries := activity.recorded()
	require.Len(t, entries, 1)
	require.Equal(t, "achievement", entries[0].ResourceType)
}

func TestAchievementDeleteMissing(t *testing.T) {
	svc := newAchievementService(newStubAchievementRepo(), nil)
	require.ErrorIs(t, svc.Delete(context.Background(), 42, ActivityActor{ID: 1}), ErrAchievementNotFound)
}
