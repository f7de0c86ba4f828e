package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"cloudgreet/models"
	"cloudgreet/utils"
)

// TemplateService manages reusable outreach message templates. Templates with
// a NULL business_id are shared defaults visible to every tenant.
type TemplateService struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTemplateService(db *gorm.DB, logger *log.Logger) *TemplateService {
	return &TemplateService{DB: db, Logger: logger}
}

// ListTemplates returns the tenant's templates plus the shared defaults,
// newest first.
func (s *TemplateService) ListTemplates(businessID *uint) ([]TemplateDTO, error) {
	var templates []models.Template
	query := s.DB.Order("created_at DESC")
	if businessID != nil {
		query = query.Where("business_id = ? OR business_id IS NULL", *businessID)
	}
	if err := query.Find(&templates).Error; err != nil {
		utils.LogError("Failed to list templates", err, map[string]interface{}{
			"business_id": businessID,
		})
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	out := make([]TemplateDTO, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateDTO(t))
	}
	return out, nil
}

func (s *TemplateService) CreateTemplate(businessID *uint, input TemplateInput) (*TemplateDTO, error) {
	template := models.Template{
		BusinessID:       businessID,
		Name:             input.Name,
		Channel:          input.Channel,
		Subject:          input.Subject,
		Body:             input.Body,
		ComplianceFooter: input.ComplianceFooter,
		IsActive:         true,
		Metadata:         input.Metadata,
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}
	if input.IsDefault != nil {
		template.IsDefault = *input.IsDefault
	}
	if err := s.DB.Create(&template).Error; err != nil {
		utils.LogError("Failed to create template", err, map[string]interface{}{
			"business_id": businessID,
			"name":        input.Name,
		})
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	dto := toTemplateDTO(template)
	return &dto, nil
}

// UpdateTemplate applies only the fields present in the payload. An empty
// payload performs no write and returns the current row.
func (s *TemplateService) UpdateTemplate(templateID uint, businessID *uint, input TemplateUpdate) (*TemplateDTO, error) {
	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Channel != nil {
		updates["channel"] = *input.Channel
	}
	if input.Subject != nil {
		updates["subject"] = *input.Subject
	}
	if input.Body != nil {
		updates["body"] = *input.Body
	}
	if input.ComplianceFooter != nil {
		updates["compliance_footer"] = *input.ComplianceFooter
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.IsDefault != nil {
		updates["is_default"] = *input.IsDefault
	}
	if input.Metadata != nil {
		updates["metadata"] = input.Metadata
	}

	if len(updates) > 0 {
		query := s.DB.Model(&models.Template{}).Where("id = ?", templateID)
		if businessID != nil {
			query = query.Where("business_id = ?", *businessID)
		}
		result := query.Updates(updates)
		if result.Error != nil {
			utils.LogError("Failed to update template", result.Error, map[string]interface{}{
				"template_id": templateID,
			})
			return nil, fmt.Errorf("failed to update template: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	var template models.Template
	if err := s.DB.First(&template, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	dto := toTemplateDTO(template)
	return &dto, nil
}

// DeleteTemplate removes a template. Sequence steps referencing it keep their
// template_id; senders fall back to the step body at send time.
func (s *TemplateService) DeleteTemplate(templateID uint, businessID *uint) error {
	query := s.DB.Where("id = ?", templateID)
	if businessID != nil {
		query = query.Where("business_id = ?", *businessID)
	}
	result := query.Delete(&models.Template{})
	if result.Error != nil {
		utils.LogError("Failed to delete template", result.Error, map[string]interface{}{
			"template_id": templateID,
		})
		return fmt.Errorf("failed to delete template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
