package models

import (
	"time"

	"gorm.io/gorm"
)

// SalesActivity is an append-only record of a rep's interaction with a prospect
type SalesActivity struct {
	gorm.Model
	ProspectID uint `gorm:"not null;index" json:"prospect_id"`
	UserID     uint `gorm:"not null;index" json:"user_id"`

	Type      string    `gorm:"not null" json:"type"` // call, email, sms, meeting, note
	Direction string    `json:"direction"`            // inbound, outbound
	Outcome   string    `json:"outcome"`
	Notes     string    `gorm:"type:text" json:"notes"`
	LoggedAt  time.Time `gorm:"not null" json:"logged_at"`

	FollowUpAt *time.Time `json:"follow_up_at,omitempty"`

	Metadata map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"metadata,omitempty"`

	// Relations
	Prospect Prospect `json:"-"`
	User     User     `json:"-"`
}

// SalesTask is a scheduled follow-up obligation tied to a prospect. The overdue
// status is materialized lazily: computed from due_at at read time and persisted
// back, not maintained by a background sweep.
type SalesTask struct {
	gorm.Model
	ProspectID uint  `gorm:"not null;index" json:"prospect_id"`
	AssignedTo *uint `gorm:"index" json:"assigned_to,omitempty"`

	DueAt    time.Time `gorm:"not null;index" json:"due_at"`
	Status   string    `gorm:"default:'pending'" json:"status"` // pending, completed, overdue
	Priority string    `gorm:"default:'normal'" json:"priority"`
	Notes    string    `gorm:"type:text" json:"notes"`

	// Relations
	Prospect Prospect `json:"-"`
}

// SalesCommission records a monetary credit for a rep against a prospect outcome
type SalesCommission struct {
	gorm.Model
	UserID     uint `gorm:"not null;index" json:"user_id"`
	ProspectID uint `gorm:"not null;index" json:"prospect_id"`
	BusinessID *uint `gorm:"index" json:"business_id,omitempty"`

	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	Status      string    `gorm:"default:'pending'" json:"status"` // pending, approved, paid
	Description string    `json:"description"`
	RecordedAt  time.Time `gorm:"not null" json:"recorded_at"`

	// Relations
	User     User     `json:"-"`
	Prospect Prospect `json:"-"`
}
