package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/models"
)

// SponsorFilter narrows sponsor list queries.
type SponsorFilter struct {
	Status   string
	Tier     string
	Page     int
	PageSize int
}

// SponsorRepository manages sponsor and event-sponsor persistence.
type SponsorRepository interface {
	List(ctx context.Context, filter SponsorFilter) ([]models.Sponsor, int64, error)
	GetByID(ctx context.Context, id uint) (models.Sponsor, error)
	Create(ctx context.Context, sponsor *models.Sponsor) error
	Update(ctx context.Context, sponsor *models.Sponsor) error
	Delete(ctx context.Context, id uint) error
	ListForEvent(ctx context.Context, eventID uint) ([]models.EventSponsor, error)
	LinkToEvent(ctx context.Context, link *models.EventSponsor) error
	UpdateLink(ctx context.Context, link *models.EventSponsor) error
	GetLink(ctx context.Context, id uint) (models.EventSponsor, error)
	UnlinkFromEvent(ctx context.Context, id uint) error
	CountByTier(ctx context.Context, tier string) (int64, error)
}

type sponsorRepository struct {
	db *gorm.DB
}

// NewSponsorRepository constructs the repository implementation.
func NewSponsorRepository(db *gorm.DB) SponsorRepository {
	return &sponsorRepository{db: db}
}

// tierRank orders tiers platinum first, partner last.
const tierRankCase = "CASE tier " +
	"WHEN 'platinum' THEN 0 " +
	"WHEN 'gold' THEN 1 " +
	"WHEN 'silver' THEN 2 " +
	"WHEN 'bronze' THEN 3 " +
	"ELSE 4 END"

func (r *sponsorRepository) List(ctx context.Context, filter SponsorFilter) ([]models.Sponsor, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Sponsor{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Tier != "" {
		query = query.Where("tier = ?", filter.Tier)
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

	var sponsors []models.Sponsor
	if err := query.Order(tierRankCase + ", name ASC").Find(&sponsors).Error; err != nil {
		return nil, 0, err
	}

	return sponsors, total, nil
}

func (r *sponsorRepository) GetByID(ctx context.Context, id uint) (models.Sponsor, error) {
	var sponsor models.Sponsor
	err := r.db.WithContext(ctx).First(&sponsor, id).Error
	return sponsor, err
}

func (r *sponsorRepository) Create(ctx context.Context, sponsor *models.Sponsor) error {
	return r.db.WithContext(ctx).Create(sponsor).Error
}

func (r *sponsorRepository) Update(ctx context.Context, sponsor *models.Sponsor) error {
	return r.db.WithContext(ctx).Save(sponsor).Error
}

func (r *sponsorRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Sponsor{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sponsorRepository) ListForEvent(ctx context.Context, eventID uint) ([]models.EventSponsor, error) {
	var links []models.EventSponsor
	err := r.db.WithContext(ctx).
		Preload("Sponsor").
		Where("event_id = ?", eventID).
		Order("display_order ASC, id ASC").
		Find(&links).Error
	return links, err
}

func (r *sponsorRepository) LinkToEvent(ctx context.Context, link *models.EventSponsor) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *sponsorRepository) UpdateLink(ctx context.Context, link *models.EventSponsor) error {
	return r.db.WithContext(ctx).Save(link).Error
}

func (r *sponsorRepository) GetLink(ctx context.Context, id uint) (models.EventSponsor, error) {
	var link models.EventSponsor
	err := r.db.WithContext(ctx).Preload("Sponsor").First(&link, id).Error
	return link, err
}

func (r *sponsorRepository) UnlinkFromEvent(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.EventSponsor{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sponsorRepository) CountByTier(ctx context.Context, tier string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Sponsor{}).
		Where("tier = ? AND status = ?", tier, models.SponsorStatusActive).
		Count(&count).Error
	return count, err
}
