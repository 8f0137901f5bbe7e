package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/models"
)

// CategoryFilter narrows category list queries.
type CategoryFilter struct {
	ActiveOnly bool
	Page       int
	PageSize   int
}

// CategoryRepository manages taxonomy persistence.
type CategoryRepository interface {
	List(ctx context.Context, filter CategoryFilter) ([]models.Category, int64, error)
	GetByID(ctx context.Context, id uint) (models.Category, error)
	GetBySlug(ctx context.Context, slug string) (models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository constructs the repository implementation.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context, filter CategoryFilter) ([]models.Category, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

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

	var categories []models.Category
	if err := query.Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, 0, err
	}

	return categories, total, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	return category, err
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	return category, err
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
