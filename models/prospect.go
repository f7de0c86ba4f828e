package models

import (
	"time"

	"gorm.io/gorm"
)

// Prospect represents a contact being pursued by sales
type Prospect struct {
	gorm.Model
	BusinessID *uint `gorm:"index" json:"business_id,omitempty"` // NULL = global/unassigned pool

	// Contact fields
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"index" json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Industry string `json:"industry"`
	Title    string `json:"title"`
	Location string `json:"location"`

	// Pipeline state. Status is a free-form string (new, contacted, qualified,
	// closed_won, ...); no transition graph is enforced.
	Status         string   `gorm:"default:'new';index" json:"status"`
	Score          int      `gorm:"default:0" json:"score"`
	Tags           []string `gorm:"type:jsonb;serializer:json" json:"tags,omitempty"`
	SequenceStatus string   `json:"sequence_status"`

	// Assignment
	AssignedTo *uint `gorm:"index" json:"assigned_to,omitempty"`

	// Timing
	LastOutreachAt     *time.Time `json:"last_outreach_at,omitempty"`
	NextTouchAt        *time.Time `json:"next_touch_at,omitempty"`
	LastContactedAt    *time.Time `json:"last_contacted_at,omitempty"`
	LastStatusChangeAt *time.Time `json:"last_status_change_at,omitempty"`

	// Relations
	Activities []SalesActivity `gorm:"foreignKey:ProspectID" json:"activities,omitempty"`
	Tasks      []SalesTask     `gorm:"foreignKey:ProspectID" json:"tasks,omitempty"`
}
