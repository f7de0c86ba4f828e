package services

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"cloudgreet/models"
	"cloudgreet/utils"
)

// ChannelStats is the per-channel slice of the outreach funnel.
type ChannelStats struct {
	Channel   string  `json:"channel"`
	Sent      int64   `json:"sent"`
	Delivered int64   `json:"delivered"`
	Replies   int64   `json:"replies"`
	ReplyRate float64 `json:"replyRate"`
}

// OutreachStats is the aggregated funnel over a time window. A delivered
// event implies a send and a reply implies a delivery, so the funnel counts
// cascade: every reply also increments delivered and totalSent.
type OutreachStats struct {
	Range        string         `json:"range"`
	TotalSent    int64          `json:"totalSent"`
	Delivered    int64          `json:"delivered"`
	Replies      int64          `json:"replies"`
	Failed       int64          `json:"failed"`
	ReplyRate    float64        `json:"replyRate"`
	DeliveryRate float64        `json:"deliveryRate"`
	ByChannel    []ChannelStats `json:"byChannel"`
}

// StatsService aggregates the outreach event log into dashboard metrics.
type StatsService struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewStatsService(db *gorm.DB, logger *log.Logger) *StatsService {
	return &StatsService{DB: db, Logger: logger}
}

var rangeDays = map[string]int{"7d": 7, "30d": 30, "90d": 90}

// GetOutreachStats reduces all events for the tenant's sequences inside the
// requested window. A tenant with no sequences short-circuits to zeroed stats
// without touching the event log.
func (s *StatsService) GetOutreachStats(businessID *uint, rangeKey string) (*OutreachStats, error) {
	days, ok := rangeDays[rangeKey]
	if !ok {
		rangeKey = "30d"
		days = 30
	}

	stats := &OutreachStats{Range: rangeKey, ByChannel: []ChannelStats{}}

	var sequenceIDs []uint
	seqQuery := s.DB.Model(&models.Sequence{})
	if businessID != nil {
		seqQuery = seqQuery.Where("business_id = ? OR business_id IS NULL", *businessID)
	}
	if err := seqQuery.Pluck("id", &sequenceIDs).Error; err != nil {
		utils.LogError("Failed to load sequences for stats", err, map[string]interface{}{
			"business_id": businessID,
		})
		return nil, fmt.Errorf("failed to load outreach stats: %w", err)
	}
	if len(sequenceIDs) == 0 {
		return stats, nil
	}

	since := time.Now().AddDate(0, 0, -days)
	var events []models.OutreachEvent
	err := s.DB.Where("sequence_id IN ? AND created_at >= ?", sequenceIDs, since).
		Find(&events).Error
	if err != nil {
		utils.LogError("Failed to load outreach events", err, map[string]interface{}{
			"business_id": businessID,
			"range":       rangeKey,
		})
		return nil, fmt.Errorf("failed to load outreach stats: %w", err)
	}

	byChannel := map[string]*ChannelStats{}
	for _, event := range events {
		ch, ok := byChannel[event.Channel]
		if !ok {
			ch = &ChannelStats{Channel: event.Channel}
			byChannel[event.Channel] = ch
		}
		switch event.Status {
		case "replied":
			stats.TotalSent++
			stats.Delivered++
			stats.Replies++
			ch.Sent++
			ch.Delivered++
			ch.Replies++
		case "delivered":
			stats.TotalSent++
			stats.Delivered++
			ch.Sent++
			ch.Delivered++
		case "sent":
			stats.TotalSent++
			ch.Sent++
		case "failed", "bounced":
			stats.Failed++
		}
	}

	if stats.TotalSent > 0 {
		stats.ReplyRate = roundRate(float64(stats.Replies) / float64(stats.TotalSent) * 100)
		stats.DeliveryRate = roundRate(float64(stats.Delivered) / float64(stats.TotalSent) * 100)
	}

	channels := make([]string, 0, len(byChannel))
	for name := range byChannel {
		channels = append(channels, name)
	}
	sort.Strings(channels)
	for _, name := range channels {
		ch := byChannel[name]
		if ch.Sent > 0 {
			ch.ReplyRate = roundRate(float64(ch.Replies) / float64(ch.Sent) * 100)
		}
		stats.ByChannel = append(stats.ByChannel, *ch)
	}

	return stats, nil
}

// roundRate rounds a percentage to one decimal place.
func roundRate(v float64) float64 {
	return math.Round(v*10) / 10
}
