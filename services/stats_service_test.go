package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudgreet/utils"
)

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "sequence_id", "prospect_id", "channel", "status", "created_at",
	})
}

func addEvents(rows *sqlmock.Rows, channel, status string, n int) *sqlmock.Rows {
	for i := 0; i < n; i++ {
		rows.AddRow(0, 5, 1, channel, status, time.Now())
	}
	return rows
}

func TestGetOutreachStats_FunnelCountsCascade(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewStatsService(db, testLogger())

	mock.ExpectQuery(`SELECT "id" FROM "sequences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	rows := eventRows()
	addEvents(rows, "email", "sent", 10)
	addEvents(rows, "email", "delivered", 5)
	addEvents(rows, "email", "replied", 2)
	addEvents(rows, "email", "failed", 1)
	addEvents(rows, "email", "bounced", 1)
	mock.ExpectQuery(`SELECT \* FROM "outreach_events"`).
		WillReturnRows(rows)

	stats, err := svc.GetOutreachStats(utils.Pointer(uint(7)), "30d")
	require.NoError(t, err)

	// 10 sent + 5 delivered + 2 replied all count as sends; replies also
	// count as deliveries.
	assert.Equal(t, int64(17), stats.TotalSent)
	assert.Equal(t, int64(7), stats.Delivered)
	assert.Equal(t, int64(2), stats.Replies)
	assert.Equal(t, int64(2), stats.Failed)
	assert.Equal(t, 11.8, stats.ReplyRate)
	assert.Equal(t, 41.2, stats.DeliveryRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOutreachStats_NoSequencesSkipsEventQuery(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewStatsService(db, testLogger())

	// Only the sequence lookup runs; the event log is never queried.
	mock.ExpectQuery(`SELECT "id" FROM "sequences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	stats, err := svc.GetOutreachStats(utils.Pointer(uint(7)), "7d")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalSent)
	assert.Equal(t, 0.0, stats.ReplyRate)
	assert.NotNil(t, stats.ByChannel)
	assert.Empty(t, stats.ByChannel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOutreachStats_ChannelBreakdownSortedByName(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewStatsService(db, testLogger())

	mock.ExpectQuery(`SELECT "id" FROM "sequences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	rows := eventRows()
	addEvents(rows, "sms", "sent", 4)
	addEvents(rows, "email", "replied", 1)
	addEvents(rows, "call", "delivered", 2)
	mock.ExpectQuery(`SELECT \* FROM "outreach_events"`).
		WillReturnRows(rows)

	stats, err := svc.GetOutreachStats(utils.Pointer(uint(7)), "90d")
	require.NoError(t, err)

	require.Len(t, stats.ByChannel, 3)
	assert.Equal(t, "call", stats.ByChannel[0].Channel)
	assert.Equal(t, "email", stats.ByChannel[1].Channel)
	assert.Equal(t, "sms", stats.ByChannel[2].Channel)
	assert.Equal(t, 100.0, stats.ByChannel[1].ReplyRate)
	assert.Equal(t, 0.0, stats.ByChannel[2].ReplyRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOutreachStats_UnknownRangeFallsBackTo30Days(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewStatsService(db, testLogger())

	mock.ExpectQuery(`SELECT "id" FROM "sequences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	stats, err := svc.GetOutreachStats(utils.Pointer(uint(7)), "365d")
	require.NoError(t, err)
	assert.Equal(t, "30d", stats.Range)
	assert.NoError(t, mock.ExpectationsWereMet())
}
