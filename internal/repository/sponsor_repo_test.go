package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/models"
)

func TestSponsorRepositoryListOrdersByTier(t *testing.T) {
	db := setupTestDB(t, &models.Sponsor{})
	repo := NewSponsorRepository(db)

	ctx := context.Background()
	sponsors := []models.Sponsor{
		{Name: "Beta Robotics", Tier: models.SponsorTierPartner, Status: models.SponsorStatusActive},
		{Name: "Acme Microchips", Tier: models.SponsorTierGold, Status: models.SponsorStatusActive},
		{Name: "Zenith Cloud", Tier: models.SponsorTierPlatinum, Status: models.SponsorStatusActive},
		{Name: "Aurora Labs", Tier: models.SponsorTierGold, Status: models.SponsorStatusActive},
	}
	for i := range sponsors {
		require.NoError(t, repo.Create(ctx, &sponsors[i]))
	}

	listed, total, err := repo.List(ctx, SponsorFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	require.Equal(t, "Zenith Cloud", listed[0].Name)
	require.Equal(t, "Acme Microchips", listed[1].Name, "same-tier sponsors sort by name")
	require.Equal(t, "Aurora Labs", listed[2].Name)
	require.Equal(t, "Beta Robotics", listed[3].Name)

	gold, total, err := repo.List(ctx, SponsorFilter{Tier: models.SponsorTierGold})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, gold, 2)
}

func TestSponsorRepositoryCountByTierCountsActiveOnly(t *testing.T) {
	db := setupTestDB(t, &models.Sponsor{})
	repo := NewSponsorRepository(db)

	ctx := context.Background()
	sponsors := []models.Sponsor{
		{Name: "Active Gold", Tier: models.SponsorTierGold, Status: models.SponsorStatusActive},
		{Name: "Inactive Gold", Tier: models.SponsorTierGold, Status: models.SponsorStatusInactive},
	}
	for i := range sponsors {
		require.NoError(t, repo.Create(ctx, &sponsors[i]))
	}

	count, err := repo.CountByTier(ctx, models.SponsorTierGold)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestSponsorRepositoryEventLinks(t *testing.T) {
	db := setupTestDB(t, &models.Category{}, &models.Event{}, &models.Sponsor{}, &models.EventSponsor{})
	repo := NewSponsorRepository(db)

	ctx := context.Background()
	sponsor := models.Sponsor{Name: "Acme Microchips", Tier: models.SponsorTierGold, Status: models.SponsorStatusActive}
	second := models.Sponsor{Name: "Zenith Cloud", Tier: models.SponsorTierPlatinum, Status: models.SponsorStatusActive}
	require.NoError(t, repo.Create(ctx, &sponsor))
	require.NoError(t, repo.Create(ctx, &second))

	links := []models.EventSponsor{
		{EventID: 1, SponsorID: sponsor.ID, DisplayOrder: 2},
		{EventID: 1, SponsorID: second.ID, SponsorTier: models.SponsorTierGold, DisplayOrder: 1},
		{EventID: 2, SponsorID: sponsor.ID},
	}
	for i := range links {
		require.NoError(t, repo.LinkToEvent(ctx, &links[i]))
	}

	forEvent, err := repo.ListForEvent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, forEvent, 2)
	require.Equal(t, second.ID, forEvent[0].SponsorID, "links sort by display order")
	require.NotNil(t, forEvent[0].Sponsor)
	require.Equal(t, "Zenith Cloud", forEvent[0].Sponsor.Name)

	loaded, err := repo.GetLink(ctx, links[1].ID)
	require.NoError(t, err)
	require.Equal(t, models.SponsorTierGold, loaded.SponsorTier)
	require.NotNil(t, loaded.Sponsor)

	require.NoError(t, repo.UnlinkFromEvent(ctx, links[2].ID))
	require.ErrorIs(t, repo.UnlinkFromEvent(ctx, links[2].ID), gorm.ErrRecordNotFound)
}

func TestSponsorRepositoryDeleteMissing(t *testing.T) {
	db := setupTestDB(t, &models.Sponsor{})
	repo := NewSponsorRepository(db)

	require.ErrorIs(t, repo.Delete(context.Background(), 777), gorm.ErrRecordNotFound)
}
