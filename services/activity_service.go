package services

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"cloudgreet/models"
	"cloudgreet/utils"
)

// CommissionEntry is one rep's row in the leaderboard.
type CommissionEntry struct {
	UserID       uint   `json:"userId"`
	Name         string `json:"name"`
	TotalCents   int64  `json:"totalCents"`
	PendingCents int64  `json:"pendingCents"`
	PaidCents    int64  `json:"paidCents"`
	Deals        int64  `json:"deals"`
}

// CommissionSummary aggregates commissions over a window.
type CommissionSummary struct {
	Range         string            `json:"range"`
	TotalCents    int64             `json:"totalCents"`
	ByStatusCents map[string]int64  `json:"byStatusCents"`
	Leaderboard   []CommissionEntry `json:"leaderboard"`
}

// ActivityService records rep interactions with leads and the side effects
// they trigger: follow-up tasks, commissions and lead touch stamps.
type ActivityService struct {
	DB     *gorm.DB
	Logger *log.Logger
	Mailer *utils.Mailer

	// repairs tracks the async overdue-task writes so tests can wait on them.
	repairs sync.WaitGroup
}

func NewActivityService(db *gorm.DB, logger *log.Logger, mailer *utils.Mailer) *ActivityService {
	return &ActivityService{DB: db, Logger: logger, Mailer: mailer}
}

// LogSalesActivity writes the activity row, which is authoritative, then
// applies the requested side effects best effort. A failed side effect is
// logged and swallowed so the logged activity is never lost.
func (s *ActivityService) LogSalesActivity(scope Scope, prospectID uint, input ActivityInput) (*SalesActivityDTO, error) {
	lead := LeadService{DB: s.DB, Logger: s.Logger}
	prospect, err := lead.loadScoped(scope, prospectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	activity := models.SalesActivity{
		ProspectID: prospectID,
		UserID:     scope.UserID,
		Type:       input.Type,
		Direction:  input.Direction,
		Outcome:    input.Outcome,
		Notes:      input.Notes,
		LoggedAt:   now,
		FollowUpAt: input.FollowUpAt,
		Metadata:   input.Metadata,
	}
	if err := s.DB.Create(&activity).Error; err != nil {
		utils.LogError("Failed to log sales activity", err, map[string]interface{}{
			"prospect_id": prospectID,
			"user_id":     scope.UserID,
		})
		return nil, fmt.Errorf("failed to log activity: %w", err)
	}

	// Side effect 1: touch stamps and optional status change on the lead.
	touch := map[string]interface{}{"last_contacted_at": now}
	if input.FollowUpAt != nil {
		touch["next_touch_at"] = *input.FollowUpAt
	}
	if input.StatusChange != nil && *input.StatusChange != prospect.Status {
		touch["status"] = *input.StatusChange
		touch["last_status_change_at"] = now
	}
	err = s.DB.Model(&models.Prospect{}).Where("id = ?", prospectID).Updates(touch).Error
	if err != nil {
		utils.LogWarn("Failed to update lead after activity", err, map[string]interface{}{
			"prospect_id": prospectID,
		})
	}

	// Side effect 2: follow-up task plus an email nudge to the rep.
	if input.FollowUpAt != nil {
		priority := input.FollowUpPriority
		if priority == "" {
			priority = "normal"
		}
		task := models.SalesTask{
			ProspectID: prospectID,
			AssignedTo: &scope.UserID,
			DueAt:      *input.FollowUpAt,
			Status:     "pending",
			Priority:   priority,
			Notes:      fmt.Sprintf("Follow up after %s", input.Type),
		}
		if err := s.DB.Create(&task).Error; err != nil {
			utils.LogWarn("Failed to create follow-up task", err, map[string]interface{}{
				"prospect_id": prospectID,
			})
		} else {
			s.notifyFollowUp(scope.UserID, prospect.Name, *input.FollowUpAt)
		}
	}

	// Side effect 3: commission record for closed deals.
	if input.CommissionAmountCents != nil {
		commission := models.SalesCommission{
			UserID:      scope.UserID,
			ProspectID:  prospectID,
			BusinessID:  scope.BusinessID,
			AmountCents: *input.CommissionAmountCents,
			Status:      "pending",
			Description: fmt.Sprintf("Deal with %s", prospect.Name),
			RecordedAt:  now,
		}
		if err := s.DB.Create(&commission).Error; err != nil {
			utils.LogWarn("Failed to record commission", err, map[string]interface{}{
				"prospect_id": prospectID,
				"user_id":     scope.UserID,
			})
		}
	}

	dto := toSalesActivityDTO(activity)
	return &dto, nil
}

func (s *ActivityService) notifyFollowUp(userID uint, prospectName string, dueAt time.Time) {
	if s.Mailer == nil || !s.Mailer.Enabled() {
		return
	}
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		utils.LogWarn("Failed to load user for follow-up email", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}
	if err := s.Mailer.SendFollowUpNotification(user.Email, prospectName, dueAt); err != nil {
		utils.LogWarn("Failed to send follow-up email", err, map[string]interface{}{
			"user_id": userID,
		})
	}
}

// ListSalesTasks returns the caller's open tasks ordered by due date. Tasks
// whose due date has passed are reported as overdue immediately; the status
// column catches up through an async write that never blocks the read.
func (s *ActivityService) ListSalesTasks(scope Scope) ([]SalesTaskDTO, error) {
	query := s.DB.Where("status IN ?", []string{"pending", "overdue"}).Order("due_at ASC")
	if !scope.IsManager() {
		query = query.Where("assigned_to = ?", scope.UserID)
	} else if scope.BusinessID != nil {
		query = query.Joins("JOIN prospects ON prospects.id = sales_tasks.prospect_id").
			Where("prospects.business_id = ?", *scope.BusinessID)
	}

	var tasks []models.SalesTask
	if err := query.Find(&tasks).Error; err != nil {
		utils.LogError("Failed to list sales tasks", err, map[string]interface{}{
			"user_id": scope.UserID,
		})
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	now := time.Now()
	var overdueIDs []uint
	out := make([]SalesTaskDTO, 0, len(tasks))
	for _, task := range tasks {
		if task.Status == "pending" && task.DueAt.Before(now) {
			task.Status = "overdue"
			overdueIDs = append(overdueIDs, task.ID)
		}
		out = append(out, toSalesTaskDTO(task))
	}

	if len(overdueIDs) > 0 {
		s.repairs.Add(1)
		go func(ids []uint) {
			defer s.repairs.Done()
			err := s.DB.Model(&models.SalesTask{}).
				Where("id IN ? AND status = ?", ids, "pending").
				Update("status", "overdue").Error
			if err != nil {
				utils.LogWarn("Failed to persist overdue task statuses", err, map[string]interface{}{
					"count": len(ids),
				})
			}
		}(overdueIDs)
	}

	return out, nil
}

// CompleteTask marks a task done. Sales reps may only complete their own;
// managers reach any task whose prospect is inside their tenant.
func (s *ActivityService) CompleteTask(scope Scope, taskID uint) error {
	query := s.DB.Model(&models.SalesTask{}).Where("id = ?", taskID)
	if !scope.IsManager() {
		query = query.Where("assigned_to = ?", scope.UserID)
	} else if scope.BusinessID != nil {
		query = query.Where("prospect_id IN (?)",
			s.DB.Model(&models.Prospect{}).Select("id").Where("business_id = ?", *scope.BusinessID))
	}
	result := query.Update("status", "completed")
	if result.Error != nil {
		utils.LogError("Failed to complete task", result.Error, map[string]interface{}{
			"task_id": taskID,
		})
		return fmt.Errorf("failed to complete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCommissionSummary aggregates commissions inside the window. Sales reps
// see only their own numbers; managers get the tenant-wide leaderboard.
func (s *ActivityService) GetCommissionSummary(scope Scope, rangeKey string) (*CommissionSummary, error) {
	days, ok := rangeDays[rangeKey]
	if !ok {
		rangeKey = "30d"
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	query := s.DB.Model(&models.SalesCommission{}).Where("recorded_at >= ?", since)
	if scope.BusinessID != nil {
		query = query.Where("business_id = ?", *scope.BusinessID)
	}
	if !scope.IsManager() {
		query = query.Where("user_id = ?", scope.UserID)
	}

	var commissions []models.SalesCommission
	if err := query.Find(&commissions).Error; err != nil {
		utils.LogError("Failed to load commissions", err, map[string]interface{}{
			"user_id": scope.UserID,
		})
		return nil, fmt.Errorf("failed to load commission summary: %w", err)
	}

	summary := &CommissionSummary{
		Range:         rangeKey,
		ByStatusCents: map[string]int64{},
		Leaderboard:   []CommissionEntry{},
	}
	perUser := map[uint]*CommissionEntry{}
	for _, c := range commissions {
		summary.TotalCents += c.AmountCents
		summary.ByStatusCents[c.Status] += c.AmountCents
		entry, ok := perUser[c.UserID]
		if !ok {
			entry = &CommissionEntry{UserID: c.UserID}
			perUser[c.UserID] = entry
		}
		entry.TotalCents += c.AmountCents
		entry.Deals++
		switch c.Status {
		case "pending":
			entry.PendingCents += c.AmountCents
		case "paid":
			entry.PaidCents += c.AmountCents
		}
	}

	if len(perUser) > 0 {
		ids := make([]uint, 0, len(perUser))
		for id := range perUser {
			ids = append(ids, id)
		}
		var users []models.User
		if err := s.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
			utils.LogWarn("Failed to load rep names for leaderboard", err, nil)
		}
		names := make(map[uint]string, len(users))
		for _, u := range users {
			names[u.ID] = u.Name
		}
		for id, entry := range perUser {
			entry.Name = names[id]
			summary.Leaderboard = append(summary.Leaderboard, *entry)
		}
		sort.Slice(summary.Leaderboard, func(i, j int) bool {
			if summary.Leaderboard[i].TotalCents != summary.Leaderboard[j].TotalCents {
				return summary.Leaderboard[i].TotalCents > summary.Leaderboard[j].TotalCents
			}
			return summary.Leaderboard[i].UserID < summary.Leaderboard[j].UserID
		})
	}

	return summary, nil
}
