package services

import (
	"time"

	"cloudgreet/models"
)

// DTOs returned to the HTTP layer. Raw rows are mapped through explicit typed
// functions, one per entity.

type TemplateDTO struct {
	ID               uint                   `json:"id"`
	BusinessID       *uint                  `json:"businessId,omitempty"`
	Name             string                 `json:"name"`
	Channel          string                 `json:"channel"`
	Subject          *string                `json:"subject,omitempty"`
	Body             string                 `json:"body"`
	ComplianceFooter string                 `json:"complianceFooter"`
	IsActive         bool                   `json:"isActive"`
	IsDefault        bool                   `json:"isDefault"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

func toTemplateDTO(m models.Template) TemplateDTO {
	return TemplateDTO{
		ID:               m.ID,
		BusinessID:       m.BusinessID,
		Name:             m.Name,
		Channel:          m.Channel,
		Subject:          m.Subject,
		Body:             m.Body,
		ComplianceFooter: m.ComplianceFooter,
		IsActive:         m.IsActive,
		IsDefault:        m.IsDefault,
		Metadata:         m.Metadata,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type SequenceStepDTO struct {
	ID              uint                   `json:"id"`
	StepOrder       int                    `json:"stepOrder"`
	Channel         string                 `json:"channel"`
	WaitMinutes     int                    `json:"waitMinutes"`
	TemplateID      *uint                  `json:"templateId,omitempty"`
	FallbackChannel *string                `json:"fallbackChannel,omitempty"`
	SendWindowStart *string                `json:"sendWindowStart,omitempty"`
	SendWindowEnd   *string                `json:"sendWindowEnd,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

func toSequenceStepDTO(m models.SequenceStep) SequenceStepDTO {
	return SequenceStepDTO{
		ID:              m.ID,
		StepOrder:       m.StepOrder,
		Channel:         m.Channel,
		WaitMinutes:     m.WaitMinutes,
		TemplateID:      m.TemplateID,
		FallbackChannel: m.FallbackChannel,
		SendWindowStart: m.SendWindowStart,
		SendWindowEnd:   m.SendWindowEnd,
		Metadata:        m.Metadata,
	}
}

// SequenceMetrics holds per-sequence counters reduced from the event log.
type SequenceMetrics struct {
	Sent      int64 `json:"sent"`
	Delivered int64 `json:"delivered"`
	Replied   int64 `json:"replied"`
	Failed    int64 `json:"failed"`
}

type SequenceDTO struct {
	ID               uint                   `json:"id"`
	BusinessID       *uint                  `json:"businessId,omitempty"`
	Name             string                 `json:"name"`
	Description      string                 `json:"description"`
	Status           string                 `json:"status"`
	ThrottlePerDay   int                    `json:"throttlePerDay"`
	SentToday        int                    `json:"sentToday"`
	SendWindowStart  *string                `json:"sendWindowStart,omitempty"`
	SendWindowEnd    *string                `json:"sendWindowEnd,omitempty"`
	Timezone         string                 `json:"timezone"`
	AutoPauseOnReply bool                   `json:"autoPauseOnReply"`
	Config           map[string]interface{} `json:"config,omitempty"`
	Steps            []SequenceStepDTO      `json:"steps"`
	Metrics          SequenceMetrics        `json:"metrics"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

func toSequenceDTO(m models.Sequence, steps []models.SequenceStep, metrics SequenceMetrics) SequenceDTO {
	stepDTOs := make([]SequenceStepDTO, 0, len(steps))
	for _, st := range steps {
		stepDTOs = append(stepDTOs, toSequenceStepDTO(st))
	}
	return SequenceDTO{
		ID:               m.ID,
		BusinessID:       m.BusinessID,
		Name:             m.Name,
		Description:      m.Description,
		Status:           m.Status,
		ThrottlePerDay:   m.ThrottlePerDay,
		SentToday:        m.SentToday,
		SendWindowStart:  m.SendWindowStart,
		SendWindowEnd:    m.SendWindowEnd,
		Timezone:         m.Timezone,
		AutoPauseOnReply: m.AutoPauseOnReply,
		Config:           m.Config,
		Steps:            stepDTOs,
		Metrics:          metrics,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type OutreachEventDTO struct {
	ID         uint                   `json:"id"`
	SequenceID uint                   `json:"sequenceId"`
	ProspectID uint                   `json:"prospectId"`
	Channel    string                 `json:"channel"`
	Status     string                 `json:"status"`
	RepliedAt  *time.Time             `json:"repliedAt,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

func toOutreachEventDTO(m models.OutreachEvent) OutreachEventDTO {
	return OutreachEventDTO{
		ID:         m.ID,
		SequenceID: m.SequenceID,
		ProspectID: m.ProspectID,
		Channel:    m.Channel,
		Status:     m.Status,
		RepliedAt:  m.RepliedAt,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
	}
}

type ProspectDTO struct {
	ID                 uint       `json:"id"`
	BusinessID         *uint      `json:"businessId,omitempty"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	Company            string     `json:"company"`
	Industry           string     `json:"industry"`
	Title              string     `json:"title"`
	Location           string     `json:"location"`
	Status             string     `json:"status"`
	Score              int        `json:"score"`
	Tags               []string   `json:"tags"`
	SequenceStatus     string     `json:"sequenceStatus"`
	AssignedTo         *uint      `json:"assignedTo,omitempty"`
	LastOutreachAt     *time.Time `json:"lastOutreachAt,omitempty"`
	NextTouchAt        *time.Time `json:"nextTouchAt,omitempty"`
	LastContactedAt    *time.Time `json:"lastContactedAt,omitempty"`
	LastStatusChangeAt *time.Time `json:"lastStatusChangeAt,omitempty"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func toProspectDTO(m models.Prospect) ProspectDTO {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProspectDTO{
		ID:                 m.ID,
		BusinessID:         m.BusinessID,
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		Company:            m.Company,
		Industry:           m.Industry,
		Title:              m.Title,
		Location:           m.Location,
		Status:             m.Status,
		Score:              m.Score,
		Tags:               tags,
		SequenceStatus:     m.SequenceStatus,
		AssignedTo:         m.AssignedTo,
		LastOutreachAt:     m.LastOutreachAt,
		NextTouchAt:        m.NextTouchAt,
		LastContactedAt:    m.LastContactedAt,
		LastStatusChangeAt: m.LastStatusChangeAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

type SalesActivityDTO struct {
	ID         uint                   `json:"id"`
	ProspectID uint                   `json:"prospectId"`
	UserID     uint                   `json:"userId"`
	Type       string                 `json:"type"`
	Direction  string                 `json:"direction"`
	Outcome    string                 `json:"outcome"`
	Notes      string                 `json:"notes"`
	LoggedAt   time.Time              `json:"loggedAt"`
	FollowUpAt *time.Time             `json:"followUpAt,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

func toSalesActivityDTO(m models.SalesActivity) SalesActivityDTO {
	return SalesActivityDTO{
		ID:         m.ID,
		ProspectID: m.ProspectID,
		UserID:     m.UserID,
		Type:       m.Type,
		Direction:  m.Direction,
		Outcome:    m.Outcome,
		Notes:      m.Notes,
		LoggedAt:   m.LoggedAt,
		FollowUpAt: m.FollowUpAt,
		Metadata:   m.Metadata,
	}
}

type SalesTaskDTO struct {
	ID         uint      `json:"id"`
	ProspectID uint      `json:"prospectId"`
	AssignedTo *uint     `json:"assignedTo,omitempty"`
	DueAt      time.Time `json:"dueAt"`
	Status     string    `json:"status"`
	Priority   string    `json:"priority"`
	Notes      string    `json:"notes"`
}

func toSalesTaskDTO(m models.SalesTask) SalesTaskDTO {
	return SalesTaskDTO{
		ID:         m.ID,
		ProspectID: m.ProspectID,
		AssignedTo: m.AssignedTo,
		DueAt:      m.DueAt,
		Status:     m.Status,
		Priority:   m.Priority,
		Notes:      m.Notes,
	}
}
