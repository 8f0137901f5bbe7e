package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event lifecycle states.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// Legacy event type values, kept for rows created before categories existed.
const (
	EventTypeAcademic = "academic"
	EventTypeCultural = "cultural"
	EventTypeResearch = "research"
	EventTypeWorkshop = "workshop"
)

// Event represents a public institute event. CategoryID supersedes the legacy
// Type column; both are kept so existing rows keep rendering.
type Event struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Title                string         `gorm:"size:255;not null" json:"title"`
	Description          string         `gorm:"type:text" json:"description"`
	LongDescription      string         `gorm:"type:text" json:"long_description"`
	Date                 time.Time      `gorm:"not null;index" json:"date"`
	EndDate              *time.Time     `json:"end_date"`
	Location             string         `gorm:"size:255" json:"location"`
	Type                 string         `gorm:"size:32;index" json:"type"`
	CategoryID           *uint          `gorm:"index" json:"category_id"`
	Category             *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	ImageURL             string         `gorm:"size:512" json:"image_url"`
	RegistrationRequired bool           `gorm:"default:false" json:"registration_required"`
	RegistrationLink     string         `gorm:"size:512" json:"registration_link"`
	Capacity             *int           `json:"capacity"`
	RegisteredCount      int            `gorm:"default:0" json:"registered_count"`
	Speakers             datatypes.JSON `gorm:"type:json" json:"speakers"`
	Schedule             datatypes.JSON `gorm:"type:json" json:"schedule"`
	Tags                 datatypes.JSON `gorm:"type:json" json:"tags"`
	IsFeatured           bool           `gorm:"default:false" json:"is_featured"`
	Status               string         `gorm:"size:16;not null;default:draft;index" json:"status"`
	CreatedBy            *uint          `json:"created_by"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// ScheduleItem is one ordered entry of an event programme, stored inside the
// Schedule JSON column.
type ScheduleItem struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Speaker     string `json:"speaker,omitempty"`
	Description string `json:"description,omitempty"`
}
