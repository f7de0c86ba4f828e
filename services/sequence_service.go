package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"cloudgreet/models"
	"cloudgreet/utils"
)

// SequenceService manages multi-step outreach sequences and their per-sequence
// engagement counters.
type SequenceService struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSequenceService(db *gorm.DB, logger *log.Logger) *SequenceService {
	return &SequenceService{DB: db, Logger: logger}
}

// CreateSequence inserts the sequence and its steps in one transaction so a
// step failure leaves no orphan sequence row behind.
func (s *SequenceService) CreateSequence(businessID *uint, input SequenceInput) (*SequenceDTO, error) {
	sequence := models.Sequence{
		BusinessID:       businessID,
		Name:             input.Name,
		Description:      input.Description,
		Status:           "draft",
		ThrottlePerDay:   100,
		Timezone:         "UTC",
		AutoPauseOnReply: true,
		Config:           input.Config,
	}
	if input.ThrottlePerDay != nil {
		sequence.ThrottlePerDay = *input.ThrottlePerDay
	}
	if input.Timezone != nil {
		sequence.Timezone = *input.Timezone
	}
	if input.AutoPauseOnReply != nil {
		sequence.AutoPauseOnReply = *input.AutoPauseOnReply
	}
	sequence.SendWindowStart = input.SendWindowStart
	sequence.SendWindowEnd = input.SendWindowEnd

	var steps []models.SequenceStep
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sequence).Error; err != nil {
			return fmt.Errorf("failed to create sequence: %w", err)
		}
		steps = buildSteps(sequence.ID, input.Steps)
		if len(steps) > 0 {
			if err := tx.Create(&steps).Error; err != nil {
				return fmt.Errorf("failed to create sequence steps: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		utils.LogError("Failed to create sequence", err, map[string]interface{}{
			"business_id": businessID,
			"name":        input.Name,
		})
		return nil, err
	}

	dto := toSequenceDTO(sequence, steps, SequenceMetrics{})
	return &dto, nil
}

// GetSequence returns a single sequence with its ordered steps and event
// counters. Returns (nil, nil) when the sequence does not exist in scope.
func (s *SequenceService) GetSequence(sequenceID uint, businessID *uint) (*SequenceDTO, error) {
	var sequence models.Sequence
	query := s.DB.Where("id = ?", sequenceID)
	if businessID != nil {
		query = query.Where("business_id = ? OR business_id IS NULL", *businessID)
	}
	if err := query.First(&sequence).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load sequence: %w", err)
	}

	var steps []models.SequenceStep
	if err := s.DB.Where("sequence_id = ?", sequenceID).Order("step_order ASC").Find(&steps).Error; err != nil {
		return nil, fmt.Errorf("failed to load sequence steps: %w", err)
	}

	metricsByID, err := s.eventMetrics([]uint{sequenceID})
	if err != nil {
		return nil, err
	}

	dto := toSequenceDTO(sequence, steps, metricsByID[sequenceID])
	return &dto, nil
}

// ListSequences returns every sequence in scope with steps and counters,
// batching the step and event lookups across the whole result set.
func (s *SequenceService) ListSequences(businessID *uint) ([]SequenceDTO, error) {
	var sequences []models.Sequence
	query := s.DB.Order("created_at DESC")
	if businessID != nil {
		query = query.Where("business_id = ? OR business_id IS NULL", *businessID)
	}
	if err := query.Find(&sequences).Error; err != nil {
		utils.LogError("Failed to list sequences", err, map[string]interface{}{
			"business_id": businessID,
		})
		return nil, fmt.Errorf("failed to list sequences: %w", err)
	}
	if len(sequences) == 0 {
		return []SequenceDTO{}, nil
	}

	ids := make([]uint, 0, len(sequences))
	for _, seq := range sequences {
		ids = append(ids, seq.ID)
	}

	var steps []models.SequenceStep
	if err := s.DB.Where("sequence_id IN ?", ids).Order("step_order ASC").Find(&steps).Error; err != nil {
		return nil, fmt.Errorf("failed to load sequence steps: %w", err)
	}
	stepsByID := make(map[uint][]models.SequenceStep)
	for _, st := range steps {
		stepsByID[st.SequenceID] = append(stepsByID[st.SequenceID], st)
	}

	metricsByID, err := s.eventMetrics(ids)
	if err != nil {
		return nil, err
	}

	out := make([]SequenceDTO, 0, len(sequences))
	for _, seq := range sequences {
		out = append(out, toSequenceDTO(seq, stepsByID[seq.ID], metricsByID[seq.ID]))
	}
	return out, nil
}

// UpdateSequence applies presence-gated scalar changes. When the payload
// carries a steps array the existing steps are replaced wholesale inside a
// transaction. Any write requires the sequence to belong to the caller's
// tenant; shared defaults cannot be modified through a tenant scope.
func (s *SequenceService) UpdateSequence(sequenceID uint, businessID *uint, input SequenceUpdate) (*SequenceDTO, error) {
	var sequence models.Sequence
	query := s.DB.Where("id = ?", sequenceID)
	if businessID != nil {
		query = query.Where("business_id = ? OR business_id IS NULL", *businessID)
	}
	if err := query.First(&sequence).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load sequence: %w", err)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.ThrottlePerDay != nil {
		updates["throttle_per_day"] = *input.ThrottlePerDay
	}
	if input.SendWindowStart != nil {
		updates["send_window_start"] = *input.SendWindowStart
	}
	if input.SendWindowEnd != nil {
		updates["send_window_end"] = *input.SendWindowEnd
	}
	if input.Timezone != nil {
		updates["timezone"] = *input.Timezone
	}
	if input.AutoPauseOnReply != nil {
		updates["auto_pause_on_reply"] = *input.AutoPauseOnReply
	}
	if input.Config != nil {
		updates["config"] = input.Config
	}

	// Shared sequences are read-only for tenants.
	if len(updates) > 0 || input.Steps != nil {
		if businessID != nil && (sequence.BusinessID == nil || *sequence.BusinessID != *businessID) {
			return nil, ErrSequenceAccessDenied
		}
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Sequence{}).Where("id = ?", sequenceID).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update sequence: %w", err)
			}
		}
		if input.Steps != nil {
			if err := tx.Where("sequence_id = ?", sequenceID).Delete(&models.SequenceStep{}).Error; err != nil {
				return fmt.Errorf("failed to clear sequence steps: %w", err)
			}
			newSteps := buildSteps(sequenceID, *input.Steps)
			if len(newSteps) > 0 {
				if err := tx.Create(&newSteps).Error; err != nil {
					return fmt.Errorf("failed to replace sequence steps: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		utils.LogError("Failed to update sequence", err, map[string]interface{}{
			"sequence_id": sequenceID,
		})
		return nil, err
	}

	dto, err := s.GetSequence(sequenceID, businessID)
	if err != nil {
		return nil, err
	}
	if dto == nil {
		return nil, ErrNotFound
	}
	return dto, nil
}

// DeleteSequence removes a sequence and its steps. The event log is kept for
// historical stats.
func (s *SequenceService) DeleteSequence(sequenceID uint, businessID *uint) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sequence_id = ?", sequenceID).Delete(&models.SequenceStep{}).Error; err != nil {
			return fmt.Errorf("failed to delete sequence steps: %w", err)
		}
		query := tx.Where("id = ?", sequenceID)
		if businessID != nil {
			query = query.Where("business_id = ?", *businessID)
		}
		result := query.Delete(&models.Sequence{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete sequence: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		utils.LogError("Failed to delete sequence", err, map[string]interface{}{
			"sequence_id": sequenceID,
		})
	}
	return err
}

func buildSteps(sequenceID uint, inputs []SequenceStepInput) []models.SequenceStep {
	steps := make([]models.SequenceStep, 0, len(inputs))
	for _, in := range inputs {
		steps = append(steps, models.SequenceStep{
			SequenceID:      sequenceID,
			StepOrder:       in.StepOrder,
			Channel:         in.Channel,
			WaitMinutes:     in.WaitMinutes,
			TemplateID:      in.TemplateID,
			FallbackChannel: in.FallbackChannel,
			SendWindowStart: in.SendWindowStart,
			SendWindowEnd:   in.SendWindowEnd,
			Metadata:        in.Metadata,
		})
	}
	return steps
}

type sequenceStatusCount struct {
	SequenceID uint
	Status     string
	Count      int64
}

// eventMetrics reduces the event log into per-sequence counters. Bounces are
// folded into the failed counter.
func (s *SequenceService) eventMetrics(sequenceIDs []uint) (map[uint]SequenceMetrics, error) {
	var rows []sequenceStatusCount
	err := s.DB.Model(&models.OutreachEvent{}).
		Select("sequence_id, status, COUNT(*) as count").
		Where("sequence_id IN ?", sequenceIDs).
		Group("sequence_id, status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load sequence metrics: %w", err)
	}

	metrics := make(map[uint]SequenceMetrics, len(sequenceIDs))
	for _, row := range rows {
		m := metrics[row.SequenceID]
		switch row.Status {
		case "sent":
			m.Sent += row.Count
		case "delivered":
			m.Delivered += row.Count
		case "replied":
			m.Replied += row.Count
		case "failed", "bounced":
			m.Failed += row.Count
		}
		metrics[row.SequenceID] = m
	}
	return metrics, nil
}
