package services

import "time"

// Input schemas. Raw JSON payloads are parsed into these structs by the
// controllers and checked with utils.ValidateStruct before any database call.
// Pointer fields distinguish "absent" from "zero" on partial updates.

type TemplateInput struct {
	Name             string                 `json:"name" validate:"required,max=200"`
	Channel          string                 `json:"channel" validate:"required,oneof=email sms call"`
	Subject          *string                `json:"subject"`
	Body             string                 `json:"body" validate:"required"`
	ComplianceFooter string                 `json:"complianceFooter" validate:"required"`
	IsActive         *bool                  `json:"isActive"`
	IsDefault        *bool                  `json:"isDefault"`
	Metadata         map[string]interface{} `json:"metadata"`
}

type TemplateUpdate struct {
	Name             *string                `json:"name" validate:"omitempty,max=200"`
	Channel          *string                `json:"channel" validate:"omitempty,oneof=email sms call"`
	Subject          *string                `json:"subject"`
	Body             *string                `json:"body"`
	ComplianceFooter *string                `json:"complianceFooter"`
	IsActive         *bool                  `json:"isActive"`
	IsDefault        *bool                  `json:"isDefault"`
	Metadata         map[string]interface{} `json:"metadata"`
}

type SequenceStepInput struct {
	StepOrder       int                    `json:"stepOrder"`
	Channel         string                 `json:"channel" validate:"required,oneof=email sms call"`
	WaitMinutes     int                    `json:"waitMinutes" validate:"min=0"`
	TemplateID      *uint                  `json:"templateId"`
	FallbackChannel *string                `json:"fallbackChannel" validate:"omitempty,oneof=email sms call"`
	SendWindowStart *string                `json:"sendWindowStart"`
	SendWindowEnd   *string                `json:"sendWindowEnd"`
	Metadata        map[string]interface{} `json:"metadata"`
}

type SequenceInput struct {
	Name             string                 `json:"name" validate:"required,max=200"`
	Description      string                 `json:"description" validate:"max=1000"`
	ThrottlePerDay   *int                   `json:"throttlePerDay" validate:"omitempty,min=1"`
	SendWindowStart  *string                `json:"sendWindowStart"`
	SendWindowEnd    *string                `json:"sendWindowEnd"`
	Timezone         *string                `json:"timezone"`
	AutoPauseOnReply *bool                  `json:"autoPauseOnReply"`
	Config           map[string]interface{} `json:"config"`
	Steps            []SequenceStepInput    `json:"steps" validate:"dive"`
}

type SequenceUpdate struct {
	Name             *string                `json:"name" validate:"omitempty,max=200"`
	Description      *string                `json:"description" validate:"omitempty,max=1000"`
	Status           *string                `json:"status" validate:"omitempty,oneof=draft active paused"`
	ThrottlePerDay   *int                   `json:"throttlePerDay" validate:"omitempty,min=1"`
	SendWindowStart  *string                `json:"sendWindowStart"`
	SendWindowEnd    *string                `json:"sendWindowEnd"`
	Timezone         *string                `json:"timezone"`
	AutoPauseOnReply *bool                  `json:"autoPauseOnReply"`
	Config           map[string]interface{} `json:"config"`
	// When Steps is present the existing steps are replaced wholesale. The
	// pointer distinguishes an absent array from an explicit empty one.
	Steps *[]SequenceStepInput `json:"steps" validate:"omitempty,dive"`
}

type StatsQuery struct {
	Range string `json:"range" validate:"required,oneof=7d 30d 90d"`
}

type OutreachEventInput struct {
	SequenceID uint                   `json:"sequenceId" validate:"required"`
	ProspectID uint                   `json:"prospectId" validate:"required"`
	Channel    string                 `json:"channel" validate:"required,oneof=email sms call"`
	Status     string                 `json:"status" validate:"required,oneof=sent delivered replied failed bounced"`
	Metadata   map[string]interface{} `json:"metadata"`
}

type ProspectInput struct {
	Name       string   `json:"name" validate:"required,max=200"`
	Email      string   `json:"email" validate:"omitempty,max=320"`
	Phone      string   `json:"phone" validate:"omitempty,max=32"`
	Company    string   `json:"company" validate:"omitempty,max=200"`
	Industry   string   `json:"industry" validate:"omitempty,max=100"`
	Title      string   `json:"title" validate:"omitempty,max=100"`
	Location   string   `json:"location" validate:"omitempty,max=200"`
	Tags       []string `json:"tags"`
	AssignedTo *uint    `json:"assignedTo"`
}

type LeadUpdateInput struct {
	Status      *string    `json:"status" validate:"omitempty,max=50"`
	Score       *int       `json:"score"`
	Tags        []string   `json:"tags"`
	AssignedTo  *uint      `json:"assignedTo"`
	NextTouchAt *time.Time `json:"nextTouchAt"`
}

// LeadFilter narrows and pages the lead list. Search matches name, company
// and email.
type LeadFilter struct {
	Status string `json:"status"`
	Search string `json:"search"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

type ActivityInput struct {
	Type      string                 `json:"type" validate:"required,oneof=call email sms meeting note"`
	Direction string                 `json:"direction" validate:"omitempty,oneof=inbound outbound"`
	Outcome   string                 `json:"outcome" validate:"omitempty,max=100"`
	Notes     string                 `json:"notes"`
	Metadata  map[string]interface{} `json:"metadata"`

	// Optional side effects
	FollowUpAt            *time.Time `json:"followUpAt"`
	FollowUpPriority      string     `json:"followUpPriority" validate:"omitempty,oneof=low normal high"`
	StatusChange          *string    `json:"statusChange" validate:"omitempty,max=50"`
	CommissionAmountCents *int64     `json:"commissionAmountCents" validate:"omitempty,min=1"`
}

// Scope carries the caller's identity for authorization decisions.
type Scope struct {
	UserID     uint
	Role       string // admin, manager, sales
	BusinessID *uint
}

// IsManager reports whether the caller may act on other reps' resources.
func (s Scope) IsManager() bool {
	return s.Role == "admin" || s.Role == "manager"
}
