package dto

import "time"

// AnalyticsSummaryResponse aggregates content totals for the admin dashboard.
// Every number comes from its own count query; treat the summary as a
// display-grade snapshot, not an atomic aggregate.
type AnalyticsSummaryResponse struct {
	PublishedEvents       int64            `json:"published_events"`
	DraftEvents           int64            `json:"draft_events"`
	UpcomingEvents        int64            `json:"upcoming_events"`
	PublishedAchievements int64            `json:"published_achievements"`
	PendingTestimonials   int64            `json:"pending_testimonials"`
	ApprovedTestimonials  int64            `json:"approved_testimonials"`
	ActiveSponsorsByTier  map[string]int64 `json:"active_sponsors_by_tier"`
	RecentAdminActions    int64            `json:"recent_admin_actions"`
	GeneratedAt           time.Time        `json:"generated_at"`
	CacheHit              bool             `json:"cache_hit,omitempty"`
}

// UploadResponse describes a stored upload.
type UploadResponse struct {
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}
