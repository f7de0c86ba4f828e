package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"cloudgreet/models"
	"cloudgreet/utils"
)

// EventService records delivery-status events reported by the channel
// providers and applies their side effects on sequences and prospects.
type EventService struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewEventService(db *gorm.DB, logger *log.Logger) *EventService {
	return &EventService{DB: db, Logger: logger}
}

// RecordOutreachEvent appends an event to the log. The event insert is
// authoritative; counter bumps and the reply auto-pause are best effort and
// never fail the request.
func (s *EventService) RecordOutreachEvent(businessID *uint, input OutreachEventInput) (*OutreachEventDTO, error) {
	var sequence models.Sequence
	query := s.DB.Where("id = ?", input.SequenceID)
	if businessID != nil {
		query = query.Where("business_id = ? OR business_id IS NULL", *businessID)
	}
	if err := query.First(&sequence).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load sequence: %w", err)
	}

	event := models.OutreachEvent{
		SequenceID: input.SequenceID,
		ProspectID: input.ProspectID,
		Channel:    input.Channel,
		Status:     input.Status,
		Metadata:   input.Metadata,
	}
	if input.Status == "replied" {
		now := time.Now()
		event.RepliedAt = &now
	}
	if err := s.DB.Create(&event).Error; err != nil {
		utils.LogError("Failed to record outreach event", err, map[string]interface{}{
			"sequence_id": input.SequenceID,
			"status":      input.Status,
		})
		return nil, fmt.Errorf("failed to record outreach event: %w", err)
	}

	switch input.Status {
	case "sent":
		err := s.DB.Model(&models.Sequence{}).Where("id = ?", sequence.ID).
			UpdateColumn("sent_today", gorm.Expr("sent_today + 1")).Error
		if err != nil {
			utils.LogWarn("Failed to bump daily send counter", err, map[string]interface{}{
				"sequence_id": sequence.ID,
			})
		}
		if input.ProspectID != 0 {
			now := time.Now()
			err := s.DB.Model(&models.Prospect{}).Where("id = ?", input.ProspectID).
				Update("last_outreach_at", now).Error
			if err != nil {
				utils.LogWarn("Failed to stamp prospect outreach time", err, map[string]interface{}{
					"prospect_id": input.ProspectID,
				})
			}
		}
	case "replied":
		if sequence.AutoPauseOnReply && sequence.Status == "active" {
			err := s.DB.Model(&models.Sequence{}).Where("id = ?", sequence.ID).
				Update("status", "paused").Error
			if err != nil {
				utils.LogWarn("Failed to auto-pause sequence on reply", err, map[string]interface{}{
					"sequence_id": sequence.ID,
				})
			} else {
				utils.LogEvent("Sequence auto-paused on reply", map[string]interface{}{
					"sequence_id": sequence.ID,
				})
			}
		}
	}

	dto := toOutreachEventDTO(event)
	return &dto, nil
}
