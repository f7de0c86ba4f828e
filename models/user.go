package models

import (
	"gorm.io/gorm"
)

// User represents a rep or admin account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	TokenVersion int    `gorm:"default:0" json:"-"`

	// Profile information
	Name     string `json:"name"`
	Timezone string `gorm:"default:'UTC'" json:"timezone"`

	// Authorization
	Role       string `gorm:"default:'sales'" json:"role"` // admin, manager, sales
	BusinessID *uint  `gorm:"index" json:"business_id,omitempty"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Relations
	Business *Business `json:"-"`
}

// IsManager reports whether the user may act on resources owned by other reps.
func (u *User) IsManager() bool {
	return u.Role == "admin" || u.Role == "manager"
}
