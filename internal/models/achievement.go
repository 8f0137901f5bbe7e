package models

import (
	"time"

	"gorm.io/datatypes"
)

// Achievement lifecycle states.
const (
	AchievementStatusDraft     = "draft"
	AchievementStatusPublished = "published"
	AchievementStatusArchived  = "archived"
)

// Achievement type values.
const (
	AchievementTypeAward         = "award"
	AchievementTypePublication   = "publication"
	AchievementTypeRecognition   = "recognition"
	AchievementTypeMilestone     = "milestone"
	AchievementTypeCollaboration = "collaboration"
)

// Achiever type values.
const (
	AchieverTypeStudent     = "student"
	AchieverTypeFaculty     = "faculty"
	AchieverTypeDepartment  = "department"
	AchieverTypeInstitution = "institution"
)

// Achievement records an award, publication or other recognition earned by a
// member of the institute. Details holds the optional nested payload
// (rank, institution, award_body, amount).
type Achievement struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	Title        string            `gorm:"size:255;not null" json:"title"`
	Description  string            `gorm:"type:text" json:"description"`
	CategoryID   *uint             `gorm:"index" json:"category_id"`
	Category     *Category         `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Type         string            `gorm:"size:32;not null;index" json:"type"`
	AchieverName string            `gorm:"size:255;not null" json:"achiever_name"`
	AchieverType string            `gorm:"size:32;not null;index" json:"achiever_type"`
	DateAchieved time.Time         `gorm:"not null;index" json:"date_achieved"`
	ImageURL     string            `gorm:"size:512" json:"image_url"`
	Details      datatypes.JSONMap `gorm:"type:json" json:"details"`
	IsFeatured   bool              `gorm:"default:false;index" json:"is_featured"`
	SortOrder    int               `gorm:"default:0" json:"sort_order"`
	Status       string            `gorm:"size:16;not null;default:draft;index" json:"status"`
	CreatedBy    *uint             `json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
