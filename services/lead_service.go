package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"gorm.io/gorm"

	"cloudgreet/models"
	"cloudgreet/utils"
)

// LeadSummary is the roll-up block returned alongside every lead list page.
// It is computed from the full scoped set, not the filtered page.
type LeadSummary struct {
	Total            int64            `json:"total"`
	ByStatus         map[string]int64 `json:"byStatus"`
	UpcomingTouches  int64            `json:"upcomingTouches"`
	OverdueFollowUps int64            `json:"overdueFollowUps"`
}

// LeadListResult bundles one page of leads with the scoped summary.
type LeadListResult struct {
	Leads   []ProspectDTO `json:"leads"`
	Summary LeadSummary   `json:"summary"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
}

// LeadDetail merges a prospect with its full interaction history.
type LeadDetail struct {
	Lead       ProspectDTO        `json:"lead"`
	Activities []SalesActivityDTO `json:"activities"`
	Tasks      []SalesTaskDTO     `json:"tasks"`
	Outreach   []OutreachEventDTO `json:"outreach"`
}

// LeadService manages the prospect book and its role-based visibility rules.
// Sales reps only ever see their own assignments; managers and admins see the
// whole tenant.
type LeadService struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewLeadService(db *gorm.DB, logger *log.Logger) *LeadService {
	return &LeadService{DB: db, Logger: logger}
}

func (s *LeadService) CreateProspect(scope Scope, input ProspectInput) (*ProspectDTO, error) {
	if input.Email != "" {
		if err := checkmail.ValidateFormat(input.Email); err != nil {
			return nil, fmt.Errorf("invalid email address: %w", err)
		}
	}

	prospect := models.Prospect{
		BusinessID: scope.BusinessID,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Company:    input.Company,
		Industry:   input.Industry,
		Title:      input.Title,
		Location:   input.Location,
		Status:     "new",
		Tags:       input.Tags,
		AssignedTo: input.AssignedTo,
	}
	if input.AssignedTo == nil && !scope.IsManager() {
		prospect.AssignedTo = &scope.UserID
	}
	if err := s.DB.Create(&prospect).Error; err != nil {
		utils.LogError("Failed to create prospect", err, map[string]interface{}{
			"business_id": scope.BusinessID,
			"name":        input.Name,
		})
		return nil, fmt.Errorf("failed to create prospect: %w", err)
	}

	dto := toProspectDTO(prospect)
	return &dto, nil
}

// searchReplacer strips LIKE wildcards from user-supplied search terms.
var searchReplacer = strings.NewReplacer("%", "", "_", "")

// ListEmployeeLeads returns a filtered page of leads plus tenant-wide summary
// counts. The sales role is always narrowed to its own assignments, whatever
// filter was requested.
func (s *LeadService) ListEmployeeLeads(scope Scope, filter LeadFilter) (*LeadListResult, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 25
	}

	base := s.scopedLeads(scope)

	query := base.Session(&gorm.Session{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		term := "%" + searchReplacer.Replace(filter.Search) + "%"
		query = query.Where("name ILIKE ? OR company ILIKE ? OR email ILIKE ?", term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count leads", err, map[string]interface{}{
			"user_id": scope.UserID,
		})
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	var prospects []models.Prospect
	err := query.Order("updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&prospects).Error
	if err != nil {
		utils.LogError("Failed to list leads", err, map[string]interface{}{
			"user_id": scope.UserID,
		})
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	summary, err := s.leadSummary(scope)
	if err != nil {
		return nil, err
	}

	leads := make([]ProspectDTO, 0, len(prospects))
	for _, p := range prospects {
		leads = append(leads, toProspectDTO(p))
	}
	return &LeadListResult{
		Leads:   leads,
		Summary: *summary,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

// leadSummary computes the roll-up from a fresh scoped query, independent of
// any list filters.
func (s *LeadService) leadSummary(scope Scope) (*LeadSummary, error) {
	summary := &LeadSummary{ByStatus: map[string]int64{}}

	if err := s.scopedLeads(scope).Count(&summary.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize leads: %w", err)
	}

	var rows []struct {
		Status string
		Count  int64
	}
	err := s.scopedLeads(scope).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize leads: %w", err)
	}
	for _, row := range rows {
		summary.ByStatus[row.Status] = row.Count
	}

	now := time.Now()
	err = s.scopedLeads(scope).
		Where("next_touch_at IS NOT NULL AND next_touch_at > ?", now).
		Count(&summary.UpcomingTouches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize leads: %w", err)
	}
	err = s.scopedLeads(scope).
		Where("next_touch_at IS NOT NULL AND next_touch_at <= ?", now).
		Count(&summary.OverdueFollowUps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize leads: %w", err)
	}

	return summary, nil
}

func (s *LeadService) scopedLeads(scope Scope) *gorm.DB {
	query := s.DB.Model(&models.Prospect{})
	if scope.BusinessID != nil {
		query = query.Where("business_id = ?", *scope.BusinessID)
	}
	if !scope.IsManager() {
		query = query.Where("assigned_to = ?", scope.UserID)
	}
	return query
}

// GetLeadDetail returns a lead merged with its activities, tasks and outreach
// history. Sales reps can only open their own leads.
func (s *LeadService) GetLeadDetail(scope Scope, prospectID uint) (*LeadDetail, error) {
	prospect, err := s.loadScoped(scope, prospectID)
	if err != nil {
		return nil, err
	}

	var activities []models.SalesActivity
	if err := s.DB.Where("prospect_id = ?", prospectID).Order("logged_at DESC").Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to load lead activities: %w", err)
	}

	var tasks []models.SalesTask
	if err := s.DB.Where("prospect_id = ?", prospectID).Order("due_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load lead tasks: %w", err)
	}

	var events []models.OutreachEvent
	if err := s.DB.Where("prospect_id = ?", prospectID).Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to load lead outreach history: %w", err)
	}

	detail := &LeadDetail{
		Lead:       toProspectDTO(*prospect),
		Activities: make([]SalesActivityDTO, 0, len(activities)),
		Tasks:      make([]SalesTaskDTO, 0, len(tasks)),
		Outreach:   make([]OutreachEventDTO, 0, len(events)),
	}
	for _, a := range activities {
		detail.Activities = append(detail.Activities, toSalesActivityDTO(a))
	}
	for _, t := range tasks {
		detail.Tasks = append(detail.Tasks, toSalesTaskDTO(t))
	}
	for _, e := range events {
		detail.Outreach = append(detail.Outreach, toOutreachEventDTO(e))
	}
	return detail, nil
}

// UpdateLead applies presence-gated changes through a fetch-mutate-save cycle.
// Reassignment is manager only; a status change stamps last_status_change_at.
func (s *LeadService) UpdateLead(scope Scope, prospectID uint, input LeadUpdateInput) (*ProspectDTO, error) {
	prospect, err := s.loadScoped(scope, prospectID)
	if err != nil {
		return nil, err
	}

	changed := false
	if input.Status != nil && *input.Status != prospect.Status {
		prospect.Status = *input.Status
		now := time.Now()
		prospect.LastStatusChangeAt = &now
		changed = true
	}
	if input.Score != nil {
		prospect.Score = *input.Score
		changed = true
	}
	if input.Tags != nil {
		prospect.Tags = input.Tags
		changed = true
	}
	if input.NextTouchAt != nil {
		prospect.NextTouchAt = input.NextTouchAt
		changed = true
	}
	if input.AssignedTo != nil {
		if !scope.IsManager() {
			return nil, ErrReassignDenied
		}
		prospect.AssignedTo = input.AssignedTo
		changed = true
	}

	if changed {
		if err := s.DB.Save(prospect).Error; err != nil {
			utils.LogError("Failed to update lead", err, map[string]interface{}{
				"prospect_id": prospectID,
				"user_id":     scope.UserID,
			})
			return nil, fmt.Errorf("failed to update lead: %w", err)
		}
	}

	dto := toProspectDTO(*prospect)
	return &dto, nil
}

// loadScoped fetches a prospect and enforces tenant and assignment scoping.
// Out-of-tenant rows read as not found; in-tenant rows assigned to someone
// else read as access denied for the sales role.
func (s *LeadService) loadScoped(scope Scope, prospectID uint) (*models.Prospect, error) {
	var prospect models.Prospect
	query := s.DB.Where("id = ?", prospectID)
	if scope.BusinessID != nil {
		query = query.Where("business_id = ?", *scope.BusinessID)
	}
	if err := query.First(&prospect).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}
	if !scope.IsManager() {
		if prospect.AssignedTo == nil || *prospect.AssignedTo != scope.UserID {
			return nil, ErrLeadAccessDenied
		}
	}
	return &prospect, nil
}
