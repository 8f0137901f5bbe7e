package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/institute-api/internal/models"
)

// EventListRequest defines filters for listing events.
type EventListRequest struct {
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

// EventResponse serializes event data. RegistrationOpen is computed from the
// current snapshot on every read; it is never stored.
type EventResponse struct {
	ID                   uint                  `json:"id"`
	Title                string                `json:"title"`
	Description          string                `json:"description"`
	LongDescription      string                `json:"long_description,omitempty"`
	Date                 time.Time             `json:"date"`
	EndDate              *time.Time            `json:"end_date,omitempty"`
	Location             string                `json:"location"`
	Type                 string                `json:"type"`
	CategoryID           *uint                 `json:"category_id,omitempty"`
	Category             *CategoryResponse     `json:"category,omitempty"`
	ImageURL             string                `json:"image_url"`
	RegistrationRequired bool                  `json:"registration_required"`
	RegistrationLink     string                `json:"registration_link,omitempty"`
	RegistrationOpen     bool                  `json:"registration_open"`
	Capacity             *int                  `json:"capacity,omitempty"`
	RegisteredCount      int                   `json:"registered_count"`
	Speakers             []string              `json:"speakers"`
	Schedule             []models.ScheduleItem `json:"schedule"`
	Tags                 []string              `json:"tags"`
	IsFeatured           bool                  `json:"is_featured"`
	Status               string                `json:"status"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// EventListResponse wraps a paginated event response.
type EventListResponse struct {
	Items      []EventResponse `json:"items"`
	Pagination PaginationMeta  `json:"pagination"`
	CacheHit   bool            `json:"cache_hit,omitempty"`
}

// EventCreateRequest captures a new event from the admin panel.
type EventCreateRequest struct {
	Title                string                `json:"title" validate:"required,min=3,max=255"`
	Description          string                `json:"description" validate:"omitempty,max=5000"`
	LongDescription      string                `json:"long_description" validate:"omitempty,max=20000"`
	Date                 time.Time             `json:"date" validate:"required"`
	EndDate              *time.Time            `json:"end_date"`
	Location             string                `json:"location" validate:"omitempty,max=255"`
	Type                 string                `json:"type" validate:"omitempty,oneof=academic cultural research workshop"`
	CategoryID           *uint                 `json:"category_id"`
	ImageURL             string                `json:"image_url" validate:"omitempty,url"`
	RegistrationRequired bool                  `json:"registration_required"`
	RegistrationLink     string                `json:"registration_link" validate:"omitempty,url"`
	Capacity             *int                  `json:"capacity" validate:"omitempty,gt=0"`
	Speakers             []string              `json:"speakers"`
	Schedule             []models.ScheduleItem `json:"schedule"`
	Tags                 []string              `json:"tags"`
	IsFeatured           bool                  `json:"is_featured"`
	Status               string                `json:"status" validate:"omitempty,oneof=draft published cancelled completed"`
}

// EventUpdateRequest allows patching event fields.
type EventUpdateRequest struct {
	Title                *string                `json:"title" validate:"omitempty,min=3,max=255"`
	Description          *string                `json:"description" validate:"omitempty,max=5000"`
	LongDescription      *string                `json:"long_description" validate:"omitempty,max=20000"`
	Date                 *time.Time             `json:"date"`
	EndDate              *time.Time             `json:"end_date"`
	Location             *string                `json:"location" validate:"omitempty,max=255"`
	Type                 *string                `json:"type" validate:"omitempty,oneof=academic cultural research workshop"`
	CategoryID           *uint                  `json:"category_id"`
	ImageURL             *string                `json:"image_url" validate:"omitempty,url"`
	RegistrationRequired *bool                  `json:"registration_required"`
	RegistrationLink     *string                `json:"registration_link" validate:"omitempty,url"`
	Capacity             *int                   `json:"capacity" validate:"omitempty,gt=0"`
	RegisteredCount      *int                   `json:"registered_count" validate:"omitempty,gte=0"`
	Speakers             *[]string              `json:"speakers"`
	Schedule             *[]models.ScheduleItem `json:"schedule"`
	Tags                 *[]string              `json:"tags"`
	IsFeatured           *bool                  `json:"is_featured"`
	Status               *string                `json:"status" validate:"omitempty,oneof=draft published cancelled completed"`
}

// NewEventResponse converts an event model into a DTO. registrationOpen is
// evaluated by the caller so the predicate stays in one place.
func NewEventResponse(event models.Event, registrationOpen bool) EventResponse {
	response := EventResponse{
		ID:                   event.ID,
		Title:                event.Title,
		Description:          event.Description,
		LongDescription:      event.LongDescription,
		Date:                 event.Date,
		EndDate:              event.EndDate,
		Location:             event.Location,
		Type:                 event.Type,
		CategoryID:           event.CategoryID,
		ImageURL:             event.ImageURL,
		RegistrationRequired: event.RegistrationRequired,
		RegistrationLink:     event.RegistrationLink,
		RegistrationOpen:     registrationOpen,
		Capacity:             event.Capacity,
		RegisteredCount:      event.RegisteredCount,
		Speakers:             decodeStringSlice(event.Speakers),
		Schedule:             decodeSchedule(event.Schedule),
		Tags:                 decodeStringSlice(event.Tags),
		IsFeatured:           event.IsFeatured,
		Status:               event.Status,
		CreatedAt:            event.CreatedAt,
		UpdatedAt:            event.UpdatedAt,
	}

	if event.Category != nil {
		category := NewCategoryResponse(*event.Category)
		response.Category = &category
	}

	return response
}

func decodeStringSlice(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return []string{}
	}
	return values
}

func decodeSchedule(raw []byte) []models.ScheduleItem {
	if len(raw) == 0 {
		return []models.ScheduleItem{}
	}
	var items []models.ScheduleItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return []models.ScheduleItem{}
	}
	return items
}
