package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog captures auditable actions performed by administrators.
// The table is append-only; rows are removed only by retention cleanup.
type ActivityLog struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	AdminID      *uint             `gorm:"index" json:"admin_id"`
	Action       string            `gorm:"size:64;not null;index" json:"action"`
	ResourceType string            `gorm:"size:64;not null;index" json:"resource_type"`
	ResourceID   *uint             `json:"resource_id"`
	Details      datatypes.JSONMap `gorm:"type:json" json:"details"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
}
