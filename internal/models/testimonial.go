package models

import "time"

// Testimonial moderation states.
const (
	TestimonialStatusPending  = "pending"
	TestimonialStatusApproved = "approved"
	TestimonialStatusRejected = "rejected"
)

// Testimonial is an alumni story submitted from the public site and moderated
// by an administrator before it appears anywhere.
type Testimonial struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	StudentName     string     `gorm:"size:255;not null" json:"student_name"`
	Story           string     `gorm:"type:text;not null" json:"story"`
	Program         string     `gorm:"size:255" json:"program"`
	GraduationYear  int        `json:"graduation_year"`
	CurrentPosition string     `gorm:"size:255" json:"current_position"`
	Company         string     `gorm:"size:255" json:"company"`
	PhotoURL        string     `gorm:"size:512" json:"photo_url"`
	Status          string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	IsFeatured      bool       `gorm:"default:false" json:"is_featured"`
	SortOrder       int        `gorm:"default:0" json:"sort_order"`
	ApprovedAt      *time.Time `json:"approved_at"`
	ApprovedBy      *uint      `json:"approved_by"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
