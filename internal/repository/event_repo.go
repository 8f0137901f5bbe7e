package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/models"
)

// EventFilter narrows event list queries.
type EventFilter struct {
	Status     string
	Type       string
	CategoryID *uint
	Featured   *bool
	From       *time.Time
	To         *time.Time
	Upcoming   bool
	Page       int
	PageSize   int
}

// EventRepository manages event persistence.
type EventRepository interface {
	List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error)
	GetByID(ctx context.Context, id uint) (models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountUpcoming(ctx context.Context, after time.Time) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository constructs the repository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Event{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	if filter.Upcoming {
		query = query.Where("date >= ?", time.Now())
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

	var events []models.Event
	if err := query.Preload("Category").Order("date ASC").Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Preload("Category").First(&event, id).Error
	return event, err
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Event{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *eventRepository) CountUpcoming(ctx context.Context, after time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("status = ? AND date >= ?", models.EventStatusPublished, after).
		Count(&count).Error
	return count, err
}
