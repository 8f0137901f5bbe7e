package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/models"
)

// AchievementFilter narrows achievement list queries.
type AchievementFilter struct {
	Status       string
	Type         string
	AchieverType string
	CategoryID   *uint
	Featured     *bool
	From         *time.Time
	To           *time.Time
	Page         int
	PageSize     int
}

// AchievementRepository manages achievement persistence.
type AchievementRepository interface {
	List(ctx context.Context, filter AchievementFilter) ([]models.Achievement, int64, error)
	GetByID(ctx context.Context, id uint) (models.Achievement, error)
	Create(ctx context.Context, achievement *models.Achievement) error
	Update(ctx context.Context, achievement *models.Achievement) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context, filter AchievementFilter) (int64, error)
}

type achievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository constructs the repository implementation.
func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) applyFilter(ctx context.Context, filter AchievementFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Achievement{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.AchieverType != "" {
		query = query.Where("achiever_type = ?", filter.AchieverType)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if filter.From != nil {
		query = query.Where("date_achieved >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date_achieved <= ?", *filter.To)
	}

	return query
}

func (r *achievementRepository) List(ctx context.Context, filter AchievementFilter) ([]models.Achievement, int64, error) {
	query := r.applyFilter(ctx, filter)

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var achievements []models.Achievement
	if err := query.Preload("Category").Order("sort_order ASC, date_achieved DESC").Find(&achievements).Error; err != nil {
		return nil, 0, err
	}

	return achievements, total, nil
}

func (r *achievementRepository) GetByID(ctx context.Context, id uint) (models.Achievement, error) {
	var achievement models.Achievement
	err := r.db.WithContext(ctx).Preload("Category").First(&achievement, id).Error
	return achievement, err
}

func (r *achievementRepository) Create(ctx context.Context, achievement *models.Achievement) error {
	return r.db.WithContext(ctx).Create(achievement).Error
}

func (r *achievementRepository) Update(ctx context.Context, achievement *models.Achievement) error {
	return r.db.WithContext(ctx).Save(achievement).Error
}

func (r *achievementRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Achievement{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count runs a count-only query for the given filter. Aggregate stats issue
// several of these independently, so the buckets may be sampled at slightly
// different instants.
func (r *achievementRepository) Count(ctx context.Context, filter AchievementFilter) (int64, error) {
	var count int64
	err := r.applyFilter(ctx, filter).Count(&count).Error
	return count, err
}
