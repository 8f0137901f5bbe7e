package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/institute-api/internal/models"
)

// SettingRepository manages site settings persistence.
type SettingRepository interface {
	ListPublic(ctx context.Context) ([]models.Setting, error)
	ListAll(ctx context.Context) ([]models.Setting, error)
	GetByKey(ctx context.Context, key string) (models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
	Delete(ctx context.Context, key string) error
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository constructs the repository implementation.
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) ListPublic(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	err := r.db.WithContext(ctx).Where("is_public = ?", true).Order("key ASC").Find(&settings).Error
	return settings, err
}

func (r *settingRepository) ListAll(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error
	return settings, err
}

func (r *settingRepository) GetByKey(ctx context.Context, key string) (models.Setting, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	return setting, err
}

func (r *settingRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "is_public", "updated_by", "updated_at"}),
	}).Create(setting).Error
}

func (r *settingRepository) Delete(ctx context.Context, key string) error {
	result := r.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
