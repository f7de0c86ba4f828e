package models

import "gorm.io/gorm"

// Sequence represents an ordered multi-channel outreach campaign
type Sequence struct {
	gorm.Model
	BusinessID *uint `gorm:"index" json:"business_id,omitempty"` // NULL = shared/global

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Status      string `gorm:"default:'draft'" json:"status"` // draft, active, paused

	// Settings
	ThrottlePerDay   int     `gorm:"default:100" json:"throttle_per_day"`
	SentToday        int     `gorm:"default:0" json:"sent_today"`
	SendWindowStart  *string `json:"send_window_start,omitempty"` // "HH:MM" local time
	SendWindowEnd    *string `json:"send_window_end,omitempty"`
	Timezone         string  `gorm:"default:'UTC'" json:"timezone"`
	AutoPauseOnReply bool    `gorm:"default:true" json:"auto_pause_on_reply"`

	Config map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"config,omitempty"`

	// Relations
	Steps []SequenceStep `gorm:"foreignKey:SequenceID" json:"steps,omitempty"`
}

// SequenceStep represents one action (channel + delay + template) within a sequence.
// Steps are replaced wholesale on sequence update, never patched individually.
type SequenceStep struct {
	gorm.Model
	SequenceID uint `gorm:"not null;index" json:"sequence_id"`

	StepOrder   int    `gorm:"not null" json:"step_order"` // sort key; uniqueness not enforced
	Channel     string `gorm:"not null" json:"channel"`
	WaitMinutes int    `gorm:"not null;default:0" json:"wait_minutes"` // delay after the previous step

	TemplateID      *uint   `gorm:"index" json:"template_id,omitempty"`
	FallbackChannel *string `json:"fallback_channel,omitempty"`
	SendWindowStart *string `json:"send_window_start,omitempty"`
	SendWindowEnd   *string `json:"send_window_end,omitempty"`

	Metadata map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"metadata,omitempty"`

	// Relations
	Template *Template `json:"-"`
}
