package dto

import (
	"time"

	"github.com/noah-isme/institute-api/internal/models"
)

// SponsorListRequest defines filters for listing sponsors.
type SponsorListRequest struct {
	Status   string
	Tier     string
	Page     int
	PageSize int
}

// SponsorResponse serializes sponsor data.
type SponsorResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	LogoURL      string    `json:"logo_url"`
	Website      string    `json:"website"`
	Description  string    `json:"description"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	Tier         string    `json:"tier"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SponsorListResponse wraps a paginated sponsor response.
type SponsorListResponse struct {
	Items      []SponsorResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
	CacheHit   bool              `json:"cache_hit,omitempty"`
}

// SponsorCreateRequest captures a new sponsor.
type SponsorCreateRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=255"`
	LogoURL      string `json:"logo_url" validate:"omitempty,url"`
	Website      string `json:"website" validate:"omitempty,url"`
	Description  string `json:"description" validate:"omitempty,max=5000"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone" validate:"omitempty,max=64"`
	Tier         string `json:"tier" validate:"omitempty,oneof=platinum gold silver bronze partner"`
	Status       string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// SponsorUpdateRequest allows patching sponsor fields.
type SponsorUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=255"`
	LogoURL      *string `json:"logo_url" validate:"omitempty,url"`
	Website      *string `json:"website" validate:"omitempty,url"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=64"`
	Tier         *string `json:"tier" validate:"omitempty,oneof=platinum gold silver bronze partner"`
	Status       *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// EventSponsorResponse serializes an event-sponsor link.
type EventSponsorResponse struct {
	ID                uint             `json:"id"`
	EventID           uint             `json:"event_id"`
	SponsorID         uint             `json:"sponsor_id"`
	Sponsor           *SponsorResponse `json:"sponsor,omitempty"`
	SponsorTier       string           `json:"sponsor_tier"`
	IsFeatured        bool             `json:"is_featured"`
	CustomDescription string           `json:"custom_description,omitempty"`
	DisplayOrder      int              `json:"display_order"`
}

// EventSponsorLinkRequest creates or updates an event-sponsor link.
type EventSponsorLinkRequest struct {
	SponsorID         uint   `json:"sponsor_id" validate:"required,gt=0"`
	SponsorTier       string `json:"sponsor_tier" validate:"omitempty,oneof=platinum gold silver bronze partner"`
	IsFeatured        bool   `json:"is_featured"`
	CustomDescription string `json:"custom_description" validate:"omitempty,max=2000"`
	DisplayOrder      int    `json:"display_order" validate:"omitempty,gte=0"`
}

// NewSponsorResponse converts a sponsor model into a DTO.
func NewSponsorResponse(sponsor models.Sponsor) SponsorResponse {
	return SponsorResponse{
		ID:           sponsor.ID,
		Name:         sponsor.Name,
		LogoURL:      sponsor.LogoURL,
		Website:      sponsor.Website,
		Description:  sponsor.Description,
		ContactEmail: sponsor.ContactEmail,
		ContactPhone: sponsor.ContactPhone,
		Tier:         sponsor.Tier,
		Status:       sponsor.Status,
		CreatedAt:    sponsor.CreatedAt,
		UpdatedAt:    sponsor.UpdatedAt,
	}
}

// NewEventSponsorResponse converts an event-sponsor link into a DTO. The
// per-event tier override wins over the sponsor's own tier when present.
func NewEventSponsorResponse(link models.EventSponsor) EventSponsorResponse {
	response := EventSponsorResponse{
		ID:                link.ID,
		EventID:           link.EventID,
		SponsorID:         link.SponsorID,
		SponsorTier:       link.SponsorTier,
		IsFeatured:        link.IsFeatured,
		CustomDescription: link.CustomDescription,
		DisplayOrder:      link.DisplayOrder,
	}

	if link.Sponsor != nil {
		sponsor := NewSponsorResponse(*link.Sponsor)
		response.Sponsor = &sponsor
		if response.SponsorTier == "" {
			response.SponsorTier = sponsor.Tier
		}
	}

	return response
}
