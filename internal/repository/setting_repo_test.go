package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/models"
)

func TestSettingRepositoryUpsertInsertsThenUpdates(t *testing.T) {
	db := setupTestDB(t, &models.Setting{})
	repo := NewSettingRepository(db)

	ctx := context.Background()
	admin := uint(1)
	setting := models.Setting{
		Key:       "hero_lines",
		Value:     datatypes.JSON(`["Welcome"]`),
		IsPublic:  true,
		UpdatedBy: &admin,
	}
	require.NoError(t, repo.Upsert(ctx, &setting))

	other := uint(2)
	replacement := models.Setting{
		Key:       "hero_lines",
		Value:     datatypes.JSON(`["Welcome back"]`),
		IsPublic:  true,
		UpdatedBy: &other,
	}
	require.NoError(t, repo.Upsert(ctx, &replacement))

	var count int64
	require.NoError(t, db.Model(&models.Setting{}).Count(&count).Error)
	require.Equal(t, int64(1), count, "upsert on an existing key must not add a row")

	stored, err := repo.GetByKey(ctx, "hero_lines")
	require.NoError(t, err)
	require.JSONEq(t, `["Welcome back"]`, string(stored.Value))
	require.Equal(t, uint(2), *stored.UpdatedBy)
}

func TestSettingRepositoryListPublicFilters(t *testing.T) {
	db := setupTestDB(t, &models.Setting{})
	repo := NewSettingRepository(db)

	ctx := context.Background()
	public := models.Setting{Key: "contact_email", Value: datatypes.JSON(`"info@x"`), IsPublic: true}
	private := models.Setting{Key: "smtp_password", Value: datatypes.JSON(`"secret"`), IsPublic: false}
	require.NoError(t, repo.Upsert(ctx, &public))
	require.NoError(t, repo.Upsert(ctx, &private))

	visible, err := repo.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, "contact_email", visible[0].Key)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestSettingRepositoryDeleteMissing(t *testing.T) {
	db := setupTestDB(t, &models.Setting{})
	repo := NewSettingRepository(db)

	require.ErrorIs(t, repo.Delete(context.Background(), "ghost"), gorm.ErrRecordNotFound)
	_, err := repo.GetByKey(context.Background(), "ghost")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
