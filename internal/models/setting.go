package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is a single site configuration value. Public settings are readable
// without authentication and feed the public pages; the rest are admin-only.
type Setting struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Key       string         `gorm:"size:128;uniqueIndex;not null" json:"key"`
	Value     datatypes.JSON `gorm:"type:json" json:"value"`
	IsPublic  bool           `gorm:"default:false;index" json:"is_public"`
	UpdatedBy *uint          `json:"updated_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
