package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"cloudgreet/models"
	"cloudgreet/utils"
)

// SequenceWorker runs the periodic housekeeping for outreach sequences:
// resetting the daily send counters at midnight UTC and re-applying the
// auto-pause rule to sequences whose pause write was lost.
type SequenceWorker struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSequenceWorker(db *gorm.DB, logger *log.Logger) *SequenceWorker {
	return &SequenceWorker{
		DB:     db,
		Logger: logger,
	}
}

func (sw *SequenceWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	sw.Logger.Println("Sequence worker started")

	go sw.resetDailyCounters(ctx)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sw.Logger.Println("Sequence worker shutting down...")
			return
		case <-ticker.C:
			sw.repairAutoPause()
		}
	}
}

// resetDailyCounters zeroes sent_today on all sequences at midnight UTC.
func (sw *SequenceWorker) resetDailyCounters(ctx context.Context) {
	for {
		now := time.Now().UTC()
		nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(nextMidnight)):
		}

		result := sw.DB.Model(&models.Sequence{}).
			Where("sent_today > 0").
			Update("sent_today", 0)
		if result.Error != nil {
			sw.Logger.Printf("Error resetting daily counters: %v", result.Error)
			utils.LogError("Failed to reset daily send counters", result.Error, nil)
			continue
		}
		sw.Logger.Printf("Reset daily send counters on %d sequences", result.RowsAffected)
	}
}

// repairAutoPause pauses active sequences that have a reply on record but
// missed their pause, which can happen when the intake's best-effort pause
// write fails.
func (sw *SequenceWorker) repairAutoPause() {
	var sequenceIDs []uint
	err := sw.DB.Model(&models.Sequence{}).
		Where("status = ? AND auto_pause_on_reply = ?", "active", true).
		Where("id IN (?)", sw.DB.Model(&models.OutreachEvent{}).
			Select("sequence_id").
			Where("status = ?", "replied")).
		Pluck("id", &sequenceIDs).Error
	if err != nil {
		sw.Logger.Printf("Error finding sequences to pause: %v", err)
		return
	}
	if len(sequenceIDs) == 0 {
		return
	}

	err = sw.DB.Model(&models.Sequence{}).
		Where("id IN ?", sequenceIDs).
		Update("status", "paused").Error
	if err != nil {
		sw.Logger.Printf("Error pausing replied sequences: %v", err)
		utils.LogError("Failed to pause replied sequences", err, map[string]interface{}{
			"count": len(sequenceIDs),
		})
		return
	}

	sw.Logger.Printf("Paused %d sequences with replies", len(sequenceIDs))
}
