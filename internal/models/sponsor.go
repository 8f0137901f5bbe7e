package models

import "time"

// Sponsor tiers, ordered by display priority.
const (
	SponsorTierPlatinum = "platinum"
	SponsorTierGold     = "gold"
	SponsorTierSilver   = "silver"
	SponsorTierBronze   = "bronze"
	SponsorTierPartner  = "partner"
)

// Sponsor states.
const (
	SponsorStatusActive   = "active"
	SponsorStatusInactive = "inactive"
)

// Sponsor is an organisation backing the institute or individual events.
type Sponsor struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	LogoURL      string    `gorm:"size:512" json:"logo_url"`
	Website      string    `gorm:"size:512" json:"website"`
	Description  string    `gorm:"type:text" json:"description"`
	ContactEmail string    `gorm:"size:255" json:"contact_email"`
	ContactPhone string    `gorm:"size:64" json:"contact_phone"`
	Tier         string    `gorm:"size:16;not null;default:partner;index" json:"tier"`
	Status       string    `gorm:"size:16;not null;default:active;index" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EventSponsor links a sponsor to an event with a per-event tier override.
type EventSponsor struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	EventID           uint      `gorm:"not null;index:idx_event_sponsor,unique" json:"event_id"`
	SponsorID         uint      `gorm:"not null;index:idx_event_sponsor,unique" json:"sponsor_id"`
	Sponsor           *Sponsor  `gorm:"foreignKey:SponsorID" json:"sponsor,omitempty"`
	SponsorTier       string    `gorm:"size:16" json:"sponsor_tier"`
	IsFeatured        bool      `gorm:"default:false" json:"is_featured"`
	CustomDescription string    `gorm:"type:text" json:"custom_description"`
	DisplayOrder      int       `gorm:"default:0" json:"display_order"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
