package models

import "gorm.io/gorm"

// Template represents a reusable outreach message template
type Template struct {
	gorm.Model
	BusinessID *uint `gorm:"index" json:"business_id,omitempty"` // NULL = shared/global default

	Name    string `gorm:"not null" json:"name"`
	Channel string `gorm:"not null" json:"channel"` // email, sms, call
	Subject *string `json:"subject,omitempty"`      // meaningful for email only
	Body    string `gorm:"type:text;not null" json:"body"`

	// ComplianceFooter is always appended when the template is rendered
	ComplianceFooter string `gorm:"type:text;not null" json:"compliance_footer"`

	IsActive  bool `gorm:"default:true" json:"is_active"`
	IsDefault bool `gorm:"default:false" json:"is_default"`

	Metadata map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"metadata,omitempty"`
}
