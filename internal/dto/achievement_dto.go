package dto

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/institute-api/internal/models"
)

// AchievementListRequest defines filters for listing achievements.
type AchievementListRequest struct {
	Status       string
	Type         string
	AchieverType string
	CategoryID   *uint
	Featured     *bool
	From         *time.Time
	To           *time.Time
	Page         int
	PageSize     int
}

// AchievementDetails is the optional nested payload of an achievement.
type AchievementDetails struct {
	Rank        string `json:"rank,omitempty"`
	Institution string `json:"institution,omitempty"`
	AwardBody   string `json:"award_body,omitempty"`
	Amount      string `json:"amount,omitempty"`
}

// AchievementResponse serializes achievement data.
type AchievementResponse struct {
	ID           uint               `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	CategoryID   *uint              `json:"category_id,omitempty"`
	Category     *CategoryResponse  `json:"category,omitempty"`
	Type         string             `json:"type"`
	AchieverName string             `json:"achiever_name"`
	AchieverType string             `json:"achiever_type"`
	DateAchieved time.Time          `json:"date_achieved"`
	ImageURL     string             `json:"image_url"`
	Details      AchievementDetails `json:"details"`
	IsFeatured   bool               `json:"is_featured"`
	SortOrder    int                `json:"sort_order"`
	Status       string             `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// AchievementListResponse wraps a paginated achievement response.
type AchievementListResponse struct {
	Items      []AchievementResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
	CacheHit   bool                  `json:"cache_hit,omitempty"`
}

// AchievementCreateRequest captures a new achievement from the admin panel.
type AchievementCreateRequest struct {
	Title        string             `json:"title" validate:"required,min=3,max=255"`
	Description  string             `json:"description" validate:"omitempty,max=5000"`
	CategoryID   *uint              `json:"category_id"`
	Type         string             `json:"type" validate:"required,oneof=award publication recognition milestone collaboration"`
	AchieverName string             `json:"achiever_name" validate:"required,min=2,max=255"`
	AchieverType string             `json:"achiever_type" validate:"required,oneof=student faculty department institution"`
	DateAchieved time.Time          `json:"date_achieved" validate:"required"`
	ImageURL     string             `json:"image_url" validate:"omitempty,url"`
	Details      AchievementDetails `json:"details"`
	IsFeatured   bool               `json:"is_featured"`
	SortOrder    int                `json:"sort_order" validate:"omitempty,gte=0"`
	Status       string             `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// AchievementUpdateRequest allows patching achievement fields.
type AchievementUpdateRequest struct {
	Title        *string             `json:"title" validate:"omitempty,min=3,max=255"`
	Description  *string             `json:"description" validate:"omitempty,max=5000"`
	CategoryID   *uint               `json:"category_id"`
	Type         *string             `json:"type" validate:"omitempty,oneof=award publication recognition milestone collaboration"`
	AchieverName *string             `json:"achiever_name" validate:"omitempty,min=2,max=255"`
	AchieverType *string             `json:"achiever_type" validate:"omitempty,oneof=student faculty department institution"`
	DateAchieved *time.Time          `json:"date_achieved"`
	ImageURL     *string             `json:"image_url" validate:"omitempty,url"`
	Details      *AchievementDetails `json:"details"`
	IsFeatured   *bool               `json:"is_featured"`
	SortOrder    *int                `json:"sort_order" validate:"omitempty,gte=0"`
	Status       *string             `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// AchievementStatsResponse aggregates display-only achievement counts. The
// buckets come from independent count queries, so they can disagree briefly
// under concurrent writes.
type AchievementStatsResponse struct {
	Total                   int64     `json:"total"`
	StudentAchievements     int64     `json:"student_achievements"`
	FacultyAchievements     int64     `json:"faculty_achievements"`
	DepartmentAchievements  int64     `json:"department_achievements"`
	InstitutionAchievements int64     `json:"institution_achievements"`
	Featured                int64     `json:"featured"`
	RecentCount             int64     `json:"recent_count"`
	GeneratedAt             time.Time `json:"generated_at"`
	CacheHit                bool      `json:"cache_hit,omitempty"`
}

// NewAchievementResponse converts an achievement model into a DTO.
func NewAchievementResponse(achievement models.Achievement) AchievementResponse {
	response := AchievementResponse{
		ID:           achievement.ID,
		Title:        achievement.Title,
		Description:  achievement.Description,
		CategoryID:   achievement.CategoryID,
		Type:         achievement.Type,
		AchieverName: achievement.AchieverName,
		AchieverType: achievement.AchieverType,
		DateAchieved: achievement.DateAchieved,
		ImageURL:     achievement.ImageURL,
		Details:      detailsFromJSON(achievement.Details),
		IsFeatured:   achievement.IsFeatured,
		SortOrder:    achievement.SortOrder,
		Status:       achievement.Status,
		CreatedAt:    achievement.CreatedAt,
		UpdatedAt:    achievement.UpdatedAt,
	}

	if achievement.Category != nil {
		category := NewCategoryResponse(*achievement.Category)
		response.Category = &category
	}

	return response
}

// DetailsToJSON converts the nested details into the stored JSON map,
// dropping empty fields.
func DetailsToJSON(details AchievementDetails) datatypes.JSONMap {
	payload := datatypes.JSONMap{}
	if details.Rank != "" {
		payload["rank"] = details.Rank
	}
	if details.Institution != "" {
		payload["institution"] = details.Institution
	}
	if details.AwardBody != "" {
		payload["award_body"] = details.AwardBody
	}
	if details.Amount != "" {
		payload["amount"] = details.Amount
	}
	return payload
}

func detailsFromJSON(payload datatypes.JSONMap) AchievementDetails {
	details := AchievementDetails{}
	if payload == nil {
		return details
	}
	if v, ok := payload["rank"].(string); ok {
		details.Rank = v
	}
	if v, ok := payload["institution"].(string); ok {
		details.Institution = v
	}
	if v, ok := payload["award_body"].(string); ok {
		details.AwardBody = v
	}
	if v, ok := payload["amount"].(string); ok {
		details.Amount = v
	}
	return details
}
