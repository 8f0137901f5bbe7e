package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/models"
)

// TestimonialFilter narrows testimonial list queries.
type TestimonialFilter struct {
	Status   string
	Featured *bool
	Page     int
	PageSize int
}

// TestimonialRepository manages testimonial persistence.
type TestimonialRepository interface {
	List(ctx context.Context, filter TestimonialFilter) ([]models.Testimonial, int64, error)
	GetByID(ctx context.Context, id uint) (models.Testimonial, error)
	Create(ctx context.Context, testimonial *models.Testimonial) error
	Update(ctx context.Context, testimonial *models.Testimonial) error
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type testimonialRepository struct {
	db *gorm.DB
}

// NewTestimonialRepository constructs the repository implementation.
func NewTestimonialRepository(db *gorm.DB) TestimonialRepository {
	return &testimonialRepository{db: db}
}

func (r *testimonialRepository) List(ctx context.Context, filter TestimonialFilter) ([]models.Testimonial, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Testimonial{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
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

	var testimonials []models.Testimonial
	if err := query.Order("sort_order ASC, created_at DESC").Find(&testimonials).Error; err != nil {
		return nil, 0, err
	}

	return testimonials, total, nil
}

func (r *testimonialRepository) GetByID(ctx context.Context, id uint) (models.Testimonial, error) {
	var testimonial models.Testimonial
	err := r.db.WithContext(ctx).First(&testimonial, id).Error
	return testimonial, err
}

func (r *testimonialRepository) Create(ctx context.Context, testimonial *models.Testimonial) error {
	return r.db.WithContext(ctx).Create(testimonial).Error
}

func (r *testimonialRepository) Update(ctx context.Context, testimonial *models.Testimonial) error {
	return r.db.WithContext(ctx).Save(testimonial).Error
}

func (r *testimonialRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Testimonial{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *testimonialRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Testimonial{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
