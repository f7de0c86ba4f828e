package models

import (
	"time"

	"gorm.io/gorm"
)

// OutreachEvent is an append-only log row recording one send/delivery/reply/failure
// against a sequence and prospect. Rows are never updated or deleted by this
// service; the log is the source of truth for all outreach metrics.
type OutreachEvent struct {
	gorm.Model
	SequenceID uint `gorm:"not null;index" json:"sequence_id"`
	ProspectID uint `gorm:"not null;index" json:"prospect_id"`

	Channel string `gorm:"not null" json:"channel"`
	Status  string `gorm:"not null" json:"status"` // sent, delivered, replied, failed, bounced

	RepliedAt *time.Time `json:"replied_at,omitempty"`

	Metadata map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"metadata,omitempty"`
}
