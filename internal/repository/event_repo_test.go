package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/models"
)

// setupTestDB opens a per-test in-memory database so tests stay isolated.
func setupTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models...))
	return db
}

func TestEventRepositoryListFiltersAndOrders(t *testing.T) {
	db := setupTestDB(t, &models.Category{}, &models.Event{})
	repo := NewEventRepository(db)

	now := time.Now()
	later := models.Event{Title: "Graduation", Date: now.Add(72 * time.Hour), Status: models.EventStatusPublished}
	sooner := models.Event{Title: "Open Day", Date: now.Add(24 * time.Hour), Status: models.EventStatusPublished, IsFeatured: true}
	past := models.Event{Title: "Alumni Meetup", Date: now.Add(-24 * time.Hour), Status: models.EventStatusPublished}
	draft := models.Event{Title: "Secret Plans", Date: now.Add(24 * time.Hour), Status: models.EventStatusDraft}

	for _, event := range []*models.Event{&later, &sooner, &past, &draft} {
		require.NoError(t, db.Create(event).Error)
	}

	published, total, err := repo.List(context.Background(), EventFilter{Status: models.EventStatusPublished})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, published, 3)
	require.Equal(t, "Alumni Meetup", published[0].Title, "events should be ordered by date ascending")
	require.Equal(t, "Open Day", published[1].Title)
	require.Equal(t, "Graduation", published[2].Title)

	upcoming, total, err := repo.List(context.Background(), EventFilter{Status: models.EventStatusPublished, Upcoming: true})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, upcoming, 2)

	featured := true
	flagged, total, err := repo.List(context.Background(), EventFilter{Featured: &featured})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Open Day", flagged[0].Title)
}

func TestEventRepositoryListPaginates(t *testing.T) {
	db := setupTestDB(t, &models.Category{}, &models.Event{})
	repo := NewEventRepository(db)

	now := time.Now()
	for i := 0; i < 5; i++ {
		event := models.Event{
			Title:  fmt.Sprintf("Lecture %d", i+1),
			Date:   now.Add(time.Duration(i+1) * time.Hour),
			Status: models.EventStatusPublished,
		}
		require.NoError(t, db.Create(&event).Error)
	}

	page, total, err := repo.List(context.Background(), EventFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	require.Equal(t, "Lecture 3", page[0].Title)
	require.Equal(t, "Lecture 4", page[1].Title)
}

func TestEventRepositoryPreloadsCategory(t *testing.T) {
	db := setupTestDB(t, &models.Category{}, &models.Event{})
	repo := NewEventRepository(db)

	category := models.Category{Name: "Workshops", Slug: "workshops", IsActive: true}
	require.NoError(t, db.Create(&category).Error)

	event := models.Event{
		Title:      "Soldering 101",
		Date:       time.Now().Add(time.Hour),
		Status:     models.EventStatusPublished,
		CategoryID: &category.ID,
	}
	require.NoError(t, db.Create(&event).Error)

	loaded, err := repo.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Category)
	require.Equal(t, "workshops", loaded.Category.Slug)
}

func TestEventRepositoryDeleteMissing(t *testing.T) {
	db := setupTestDB(t, &models.Category{}, &models.Event{})
	repo := NewEventRepository(db)

	err := repo.Delete(context.Background(), 12345)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEventRepositoryCountUpcomingIgnoresDrafts(t *testing.T) {
	db := setupTestDB(t, &models.Category{}, &models.Event{})
	repo := NewEventRepository(db)

	now := time.Now()
	events := []models.Event{
		{Title: "A", Date: now.Add(time.Hour), Status: models.EventStatusPublished},
		{Title: "B", Date: now.Add(2 * time.Hour), Status: models.EventStatusDraft},
		{Title: "C", Date: now.Add(-time.Hour), Status: models.EventStatusPublished},
	}
	for i := range events {
		require.NoError(t, db.Create(&events[i]).Error)
	}

	count, err := repo.CountUpcoming(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	drafts, err := repo.CountByStatus(context.Background(), models.EventStatusDraft)
	require.NoError(t, err)
	require.Equal(t, int64(1), drafts)
}
