package dto

import (
	"time"

	"github.com/noah-isme/institute-api/internal/models"
)

// CategoryResponse serializes a taxonomy entry.
type CategoryResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryListResponse wraps a paginated category response.
type CategoryListResponse struct {
	Items      []CategoryResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
	CacheHit   bool               `json:"cache_hit,omitempty"`
}

// CategoryCreateRequest captures a new taxonomy entry.
type CategoryCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=128"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Color       string `json:"color" validate:"omitempty,max=64"`
	Icon        string `json:"icon" validate:"omitempty,max=64"`
	IsActive    *bool  `json:"is_active"`
	SortOrder   int    `json:"sort_order" validate:"omitempty,gte=0"`
}

// CategoryUpdateRequest allows patching a taxonomy entry.
type CategoryUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=128"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Color       *string `json:"color" validate:"omitempty,max=64"`
	Icon        *string `json:"icon" validate:"omitempty,max=64"`
	IsActive    *bool   `json:"is_active"`
	SortOrder   *int    `json:"sort_order" validate:"omitempty,gte=0"`
}

// NewCategoryResponse converts a category model into a DTO.
func NewCategoryResponse(category models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		Color:       category.Color,
		Icon:        category.Icon,
		IsActive:    category.IsActive,
		SortOrder:   category.SortOrder,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}
