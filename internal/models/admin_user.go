package models

import "time"

// Admin roles.
const (
	AdminRoleAdmin      = "admin"
	AdminRoleSuperAdmin = "super_admin"
)

// AdminUser is an operator of the admin panel.
type AdminUser struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Role      string     `gorm:"size:32;not null;default:admin" json:"role"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
