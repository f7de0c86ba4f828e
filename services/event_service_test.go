package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudgreet/utils"
)

func TestRecordOutreachEvent_SentBumpsCounters(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewEventService(db, testLogger())

	mock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sequenceRows().
			AddRow(5, 7, "Roof push", "", "active", 100, 3, "UTC", true, time.Now(), time.Now()))
	mock.ExpectQuery(`INSERT INTO "outreach_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(61))
	mock.ExpectExec(`UPDATE "sequences" SET "sent_today"=sent_today \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "prospects" SET "last_outreach_at"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	event, err := svc.RecordOutreachEvent(utils.Pointer(uint(7)), OutreachEventInput{
		SequenceID: 5, ProspectID: 9, Channel: "email", Status: "sent",
	})
	require.NoError(t, err)
	assert.Equal(t, "sent", event.Status)
	assert.Nil(t, event.RepliedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutreachEvent_ReplyAutoPausesActiveSequence(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewEventService(db, testLogger())

	mock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sequenceRows().
			AddRow(5, 7, "Roof push", "", "active", 100, 3, "UTC", true, time.Now(), time.Now()))
	mock.ExpectQuery(`INSERT INTO "outreach_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(62))
	mock.ExpectExec(`UPDATE "sequences" SET "status"=\$1`).
		WithArgs("paused", sqlmock.AnyArg(), uint(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	event, err := svc.RecordOutreachEvent(utils.Pointer(uint(7)), OutreachEventInput{
		SequenceID: 5, ProspectID: 9, Channel: "email", Status: "replied",
	})
	require.NoError(t, err)
	assert.NotNil(t, event.RepliedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutreachEvent_ReplyLeavesPausedSequenceAlone(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewEventService(db, testLogger())

	mock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sequenceRows().
			AddRow(5, 7, "Roof push", "", "paused", 100, 3, "UTC", true, time.Now(), time.Now()))
	mock.ExpectQuery(`INSERT INTO "outreach_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(63))

	_, err := svc.RecordOutreachEvent(utils.Pointer(uint(7)), OutreachEventInput{
		SequenceID: 5, ProspectID: 9, Channel: "email", Status: "replied",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutreachEvent_CounterFailureDoesNotFailRequest(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewEventService(db, testLogger())

	mock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sequenceRows().
			AddRow(5, 7, "Roof push", "", "active", 100, 3, "UTC", true, time.Now(), time.Now()))
	mock.ExpectQuery(`INSERT INTO "outreach_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(64))
	mock.ExpectExec(`UPDATE "sequences" SET "sent_today"=sent_today \+ 1`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectExec(`UPDATE "prospects" SET "last_outreach_at"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	event, err := svc.RecordOutreachEvent(utils.Pointer(uint(7)), OutreachEventInput{
		SequenceID: 5, ProspectID: 9, Channel: "email", Status: "sent",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(64), event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutreachEvent_UnknownSequence(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewEventService(db, testLogger())

	mock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sequenceRows())

	_, err := svc.RecordOutreachEvent(utils.Pointer(uint(7)), OutreachEventInput{
		SequenceID: 99, ProspectID: 9, Channel: "email", Status: "sent",
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
