package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cloudgreet/models"
	"cloudgreet/services"
	"cloudgreet/utils"
)

// OutreachController exposes templates, sequences, the stats dashboard and
// the provider event intake.
type OutreachController struct {
	DB        *gorm.DB
	Logger    *log.Logger
	Templates *services.TemplateService
	Sequences *services.SequenceService
	Stats     *services.StatsService
	Events    *services.EventService
}

func NewOutreachController(db *gorm.DB, logger *log.Logger) *OutreachController {
	return &OutreachController{
		DB:        db,
		Logger:    logger,
		Templates: services.NewTemplateService(db, logger),
		Sequences: services.NewSequenceService(db, logger),
		Stats:     services.NewStatsService(db, logger),
		Events:    services.NewEventService(db, logger),
	}
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func currentScope(c *fiber.Ctx) services.Scope {
	user := currentUser(c)
	if user == nil {
		return services.Scope{}
	}
	return services.Scope{UserID: user.ID, Role: user.Role, BusinessID: user.BusinessID}
}

// GET /outreach/templates
func (ctrl *OutreachController) ListTemplates(c *fiber.Ctx) error {
	scope := currentScope(c)
	templates, err := ctrl.Templates.ListTemplates(scope.BusinessID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch templates", err)
	}
	return c.JSON(utils.SuccessResponse(templates))
}

// POST /outreach/templates
func (ctrl *OutreachController) CreateTemplate(c *fiber.Ctx) error {
	var input services.TemplateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	scope := currentScope(c)
	template, err := ctrl.Templates.CreateTemplate(scope.BusinessID, input)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create template", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(template))
}

// PUT /outreach/templates/:id
func (ctrl *OutreachController) UpdateTemplate(c *fiber.Ctx) error {
	templateID := utils.ParseUint(c.Params("id"))
	if templateID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid template ID", nil)
	}

	var input services.TemplateUpdate
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	scope := currentScope(c)
	template, err := ctrl.Templates.UpdateTemplate(templateID, scope.BusinessID, input)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update template", err)
	}
	return c.JSON(utils.SuccessResponse(template))
}

// DELETE /outreach/templates/:id
func (ctrl *OutreachController) DeleteTemplate(c *fiber.Ctx) error {
	templateID := utils.ParseUint(c.Params("id"))
	if templateID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid template ID", nil)
	}

	scope := currentScope(c)
	if err := ctrl.Templates.DeleteTemplate(templateID, scope.BusinessID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete template", err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": true}))
}

// GET /outreach/sequences
func (ctrl *OutreachController) ListSequences(c *fiber.Ctx) error {
	scope := currentScope(c)
	sequences, err := ctrl.Sequences.ListSequences(scope.BusinessID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sequences", err)
	}
	return c.JSON(utils.SuccessResponse(sequences))
}

// GET /outreach/sequences/:id
func (ctrl *OutreachController) GetSequence(c *fiber.Ctx) error {
	sequenceID := utils.ParseUint(c.Params("id"))
	if sequenceID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid sequence ID", nil)
	}

	scope := currentScope(c)
	sequence, err := ctrl.Sequences.GetSequence(sequenceID, scope.BusinessID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sequence", err)
	}
	if sequence == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
	}
	return c.JSON(utils.SuccessResponse(sequence))
}

// POST /outreach/sequences
func (ctrl *OutreachController) CreateSequence(c *fiber.Ctx) error {
	var input services.SequenceInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	scope := currentScope(c)
	sequence, err := ctrl.Sequences.CreateSequence(scope.BusinessID, input)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create sequence", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(sequence))
}

// PUT /outreach/sequences/:id
func (ctrl *OutreachController) UpdateSequence(c *fiber.Ctx) error {
	sequenceID := utils.ParseUint(c.Params("id"))
	if sequenceID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid sequence ID", nil)
	}

	var input services.SequenceUpdate
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	scope := currentScope(c)
	sequence, err := ctrl.Sequences.UpdateSequence(sequenceID, scope.BusinessID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
		case errors.Is(err, services.ErrSequenceAccessDenied):
			return utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this sequence", nil)
		default:
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update sequence", err)
		}
	}
	return c.JSON(utils.SuccessResponse(sequence))
}

// DELETE /outreach/sequences/:id
func (ctrl *OutreachController) DeleteSequence(c *fiber.Ctx) error {
	sequenceID := utils.ParseUint(c.Params("id"))
	if sequenceID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid sequence ID", nil)
	}

	scope := currentScope(c)
	if err := ctrl.Sequences.DeleteSequence(sequenceID, scope.BusinessID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete sequence", err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": true}))
}

// GET /outreach/stats?range=30d
func (ctrl *OutreachController) GetOutreachStats(c *fiber.Ctx) error {
	rangeKey := c.Query("range", "30d")
	if err := utils.ValidateStruct(services.StatsQuery{Range: rangeKey}); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid range, use 7d, 30d or 90d", err)
	}

	scope := currentScope(c)
	stats, err := ctrl.Stats.GetOutreachStats(scope.BusinessID, rangeKey)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch outreach stats", err)
	}
	return c.JSON(utils.SuccessResponse(stats))
}

// POST /outreach/events
func (ctrl *OutreachController) RecordOutreachEvent(c *fiber.Ctx) error {
	var input services.OutreachEventInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	scope := currentScope(c)
	event, err := ctrl.Events.RecordOutreachEvent(scope.BusinessID, input)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record event", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(event))
}
