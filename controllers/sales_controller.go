package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cloudgreet/services"
	"cloudgreet/utils"
)

// SalesController exposes the lead book, activity logging, follow-up tasks
// and the commission dashboard.
type SalesController struct {
	DB         *gorm.DB
	Logger     *log.Logger
	Leads      *services.LeadService
	Activities *services.ActivityService
}

func NewSalesController(db *gorm.DB, logger *log.Logger, mailer *utils.Mailer) *SalesController {
	return &SalesController{
		DB:         db,
		Logger:     logger,
		Leads:      services.NewLeadService(db, logger),
		Activities: services.NewActivityService(db, logger, mailer),
	}
}

// POST /sales/leads
func (ctrl *SalesController) CreateProspect(c *fiber.Ctx) error {
	var input services.ProspectInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	prospect, err := ctrl.Leads.CreateProspect(currentScope(c), input)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to create lead", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(prospect))
}

// GET /sales/leads?status=&search=&page=&limit=
func (ctrl *SalesController) ListEmployeeLeads(c *fiber.Ctx) error {
	filter := services.LeadFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 25),
	}

	result, err := ctrl.Leads.ListEmployeeLeads(currentScope(c), filter)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}
	return c.JSON(utils.PaginatedResponse{
		Data: fiber.Map{
			"leads":   result.Leads,
			"summary": result.Summary,
		},
		Total: result.Total,
		Page:  result.Page,
		Limit: result.Limit,
	})
}

// GET /sales/leads/:id
func (ctrl *SalesController) GetLeadDetail(c *fiber.Ctx) error {
	prospectID := utils.ParseUint(c.Params("id"))
	if prospectID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid lead ID", nil)
	}

	detail, err := ctrl.Leads.GetLeadDetail(currentScope(c), prospectID)
	if err != nil {
		return leadError(c, err, "Failed to fetch lead")
	}
	return c.JSON(utils.SuccessResponse(detail))
}

// PUT /sales/leads/:id
func (ctrl *SalesController) UpdateLead(c *fiber.Ctx) error {
	prospectID := utils.ParseUint(c.Params("id"))
	if prospectID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid lead ID", nil)
	}

	var input services.LeadUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	lead, err := ctrl.Leads.UpdateLead(currentScope(c), prospectID, input)
	if err != nil {
		return leadError(c, err, "Failed to update lead")
	}
	return c.JSON(utils.SuccessResponse(lead))
}

// POST /sales/leads/:id/activities
func (ctrl *SalesController) LogSalesActivity(c *fiber.Ctx) error {
	prospectID := utils.ParseUint(c.Params("id"))
	if prospectID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid lead ID", nil)
	}

	var input services.ActivityInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	activity, err := ctrl.Activities.LogSalesActivity(currentScope(c), prospectID, input)
	if err != nil {
		return leadError(c, err, "Failed to log activity")
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(activity))
}

// GET /sales/tasks
func (ctrl *SalesController) ListSalesTasks(c *fiber.Ctx) error {
	tasks, err := ctrl.Activities.ListSalesTasks(currentScope(c))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}
	return c.JSON(utils.SuccessResponse(tasks))
}

// POST /sales/tasks/:id/complete
func (ctrl *SalesController) CompleteTask(c *fiber.Ctx) error {
	taskID := utils.ParseUint(c.Params("id"))
	if taskID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task ID", nil)
	}

	if err := ctrl.Activities.CompleteTask(currentScope(c), taskID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to complete task", err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"completed": true}))
}

// GET /sales/commissions?range=30d
func (ctrl *SalesController) GetCommissionSummary(c *fiber.Ctx) error {
	rangeKey := c.Query("range", "30d")
	if err := utils.ValidateStruct(services.StatsQuery{Range: rangeKey}); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid range, use 7d, 30d or 90d", err)
	}

	summary, err := ctrl.Activities.GetCommissionSummary(currentScope(c), rangeKey)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch commission summary", err)
	}
	return c.JSON(utils.SuccessResponse(summary))
}

func leadError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	case errors.Is(err, services.ErrLeadAccessDenied):
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this lead", nil)
	case errors.Is(err, services.ErrReassignDenied):
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only managers can reassign leads", nil)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, fallback, err)
	}
}
