package dto

import (
	"time"

	"github.com/noah-isme/institute-api/internal/models"
)

// ActivityListRequest defines filters for listing activity log entries.
type ActivityListRequest struct {
	Page         int
	PageSize     int
	AdminID      uint
	Action       string
	ResourceType string
	SinceDays    int
}

// ActivityResponse serializes an audit trail entry.
type ActivityResponse struct {
	ID           uint                   `json:"id"`
	AdminID      *uint                  `json:"admin_id,omitempty"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   *uint                  `json:"resource_id,omitempty"`
	Details      map[string]interface{} `json:"details"`
	CreatedAt    time.Time              `json:"created_at"`
}

// ActivityListResponse wraps a paginated activity response.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
	CacheHit   bool               `json:"cache_hit,omitempty"`
}

// ActivityCleanupRequest carries the retention threshold for log cleanup.
type ActivityCleanupRequest struct {
	OlderThanDays int `json:"older_than_days" validate:"required,gte=1,lte=3650"`
}

// ActivityCleanupResponse reports how many entries a cleanup removed.
type ActivityCleanupResponse struct {
	Removed int64     `json:"removed"`
	Cutoff  time.Time `json:"cutoff"`
}

// ActivityStatsResponse aggregates recent audit activity for the dashboard.
type ActivityStatsResponse struct {
	TotalRecent int64            `json:"total_recent"`
	ByAction    map[string]int64 `json:"by_action"`
	WindowDays  int              `json:"window_days"`
	GeneratedAt time.Time        `json:"generated_at"`
	CacheHit    bool             `json:"cache_hit,omitempty"`
}

// NewActivityResponse converts an activity log model into a DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	details := map[string]interface{}{}
	for key, value := range entry.Details {
		details[key] = value
	}

	return ActivityResponse{
		ID:           entry.ID,
		AdminID:      entry.AdminID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      details,
		CreatedAt:    entry.CreatedAt,
	}
}
