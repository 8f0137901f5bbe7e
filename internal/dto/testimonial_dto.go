package dto

import (
	"time"

	"github.com/noah-isme/institute-api/internal/models"
)

// TestimonialListRequest defines filters for listing testimonials.
type TestimonialListRequest struct {
	Status   string
	Featured *bool
	Page     int
	PageSize int
}

// TestimonialResponse serializes testimonial data.
type TestimonialResponse struct {
	ID              uint       `json:"id"`
	StudentName     string     `json:"student_name"`
	Story           string     `json:"story"`
	Program         string     `json:"program"`
	GraduationYear  int        `json:"graduation_year"`
	CurrentPosition string     `json:"current_position"`
	Company         string     `json:"company"`
	PhotoURL        string     `json:"photo_url"`
	Status          string     `json:"status"`
	IsFeatured      bool       `json:"is_featured"`
	SortOrder       int        `json:"sort_order"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ApprovedBy      *uint      `json:"approved_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TestimonialListResponse wraps a paginated testimonial response.
type TestimonialListResponse struct {
	Items      []TestimonialResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
	CacheHit   bool                  `json:"cache_hit,omitempty"`
}

// TestimonialSubmitRequest captures a public testimonial submission. It always
// lands in pending state regardless of what the client sends.
type TestimonialSubmitRequest struct {
	StudentName     string `json:"student_name" validate:"required,min=2,max=255"`
	Story           string `json:"story" validate:"required,min=20,max=10000"`
	Program         string `json:"program" validate:"omitempty,max=255"`
	GraduationYear  int    `json:"graduation_year" validate:"omitempty,gte=1950,lte=2100"`
	CurrentPosition string `json:"current_position" validate:"omitempty,max=255"`
	Company         string `json:"company" validate:"omitempty,max=255"`
	PhotoURL        string `json:"photo_url" validate:"omitempty,url"`
}

// TestimonialUpdateRequest allows patching testimonial fields from the admin panel.
type TestimonialUpdateRequest struct {
	StudentName     *string `json:"student_name" validate:"omitempty,min=2,max=255"`
	Story           *string `json:"story" validate:"omitempty,min=20,max=10000"`
	Program         *string `json:"program" validate:"omitempty,max=255"`
	GraduationYear  *int    `json:"graduation_year" validate:"omitempty,gte=1950,lte=2100"`
	CurrentPosition *string `json:"current_position" validate:"omitempty,max=255"`
	Company         *string `json:"company" validate:"omitempty,max=255"`
	PhotoURL        *string `json:"photo_url" validate:"omitempty,url"`
	IsFeatured      *bool   `json:"is_featured"`
	SortOrder       *int    `json:"sort_order" validate:"omitempty,gte=0"`
}

// TestimonialRejectRequest carries the moderation rejection reason.
type TestimonialRejectRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=2000"`
}

// NewTestimonialResponse converts a testimonial model into a DTO.
func NewTestimonialResponse(testimonial models.Testimonial) TestimonialResponse {
	return TestimonialResponse{
		ID:              testimonial.ID,
		StudentName:     testimonial.StudentName,
		Story:           testimonial.Story,
		Program:         testimonial.Program,
		GraduationYear:  testimonial.GraduationYear,
		CurrentPosition: testimonial.CurrentPosition,
		Company:         testimonial.Company,
		PhotoURL:        testimonial.PhotoURL,
		Status:          testimonial.Status,
		IsFeatured:      testimonial.IsFeatured,
		SortOrder:       testimonial.SortOrder,
		ApprovedAt:      testimonial.ApprovedAt,
		ApprovedBy:      testimonial.ApprovedBy,
		RejectionReason: testimonial.RejectionReason,
		CreatedAt:       testimonial.CreatedAt,
	}
}
