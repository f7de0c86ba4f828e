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

func sequenceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "business_id", "name", "description", "status", "throttle_per_day",
		"sent_today", "timezone", "auto_pause_on_reply", "created_at", "updated_at",
	})
}

func stepRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "sequence_id", "step_order", "channel", "wait_minutes", "template_id",
	})
}

func metricRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"sequence_id", "status", "count"})
}

func TestCreateSequence_RollsBackWhenStepInsertFails(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewSequenceService(db, testLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "sequences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(`INSERT INTO "sequence_steps"`).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	_, err := svc.CreateSequence(utils.Pointer(uint(7)), SequenceInput{
		Name:  "New roof push",
		Steps: []SequenceStepInput{{StepOrder: 1, Channel: "email", WaitMinutes: 0}},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSequence_TimezoneOverridesDefault(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewSequenceService(db, testLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "sequences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	sequence, err := svc.CreateSequence(utils.Pointer(uint(7)), SequenceInput{
		Name:     "New roof push",
		Timezone: utils.Pointer("America/Denver"),
	})
	require.NoError(t, err)
	assert.Equal(t, "America/Denver", sequence.Timezone)
	assert.Equal(t, "draft", sequence.Status)
	assert.Equal(t, 100, sequence.ThrottlePerDay)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSequence_MissingReturnsNilWithoutError(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewSequenceService(db, testLogger())

	mock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sequenceRows())

	sequence, err := svc.GetSequence(99, utils.Pointer(uint(7)))
	require.NoError(t, err)
	assert.Nil(t, sequence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSequence_StepsOrderedAndBouncesFoldedIntoFailed(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewSequenceService(db, testLogger())

	mock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sequenceRows().
			AddRow(5, 7, "Roof push", "", "active", 100, 3, "UTC", true, time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT \* FROM "sequence_steps" WHERE sequence_id = \$1 AND .* ORDER BY step_order ASC`).
		WithArgs(uint(5)).
		WillReturnRows(stepRows().
			AddRow(31, 5, 1, "email", 0, nil).
			AddRow(32, 5, 2, "sms", 1440, nil).
			AddRow(33, 5, 3, "call", 2880, nil))
	mock.ExpectQuery(`SELECT sequence_id, status, COUNT\(\*\) as count FROM "outreach_events"`).
		WillReturnRows(metricRows().
			AddRow(5, "sent", 10).
			AddRow(5, "delivered", 6).
			AddRow(5, "replied", 2).
			AddRow(5, "failed", 1).
			AddRow(5, "bounced", 2))

	sequence, err := svc.GetSequence(5, utils.Pointer(uint(7)))
	require.NoError(t, err)
	require.NotNil(t, sequence)

	require.Len(t, sequence.Steps, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{
		sequence.Steps[0].StepOrder, sequence.Steps[1].StepOrder, sequence.Steps[2].StepOrder,
	})
	assert.Equal(t, int64(10), sequence.Metrics.Sent)
	assert.Equal(t, int64(2), sequence.Metrics.Replied)
	assert.Equal(t, int64(3), sequence.Metrics.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSequence_ReplacesStepsWholesale(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewSequenceService(db, testLogger())

	mock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sequenceRows().
			AddRow(5, 7, "Roof push", "", "draft", 100, 0, "UTC", true, time.Now(), time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "sequence_steps" SET "deleted_at"=\$1 WHERE sequence_id = \$2`).
		WithArgs(sqlmock.AnyArg(), uint(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`INSERT INTO "sequence_steps"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41).AddRow(42))
	mock.ExpectCommit()

	// Re-fetch after the rewrite
	mock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sequenceRows().
			AddRow(5, 7, "Roof push", "", "draft", 100, 0, "UTC", true, time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT \* FROM "sequence_steps"`).
		WillReturnRows(stepRows().
			AddRow(41, 5, 1, "sms", 0, nil).
			AddRow(42, 5, 2, "email", 720, nil))
	mock.ExpectQuery(`SELECT sequence_id, status, COUNT\(\*\) as count FROM "outreach_events"`).
		WillReturnRows(metricRows())

	steps := []SequenceStepInput{
		{StepOrder: 1, Channel: "sms"},
		{StepOrder: 2, Channel: "email", WaitMinutes: 720},
	}
	sequence, err := svc.UpdateSequence(5, utils.Pointer(uint(7)), SequenceUpdate{Steps: &steps})
	require.NoError(t, err)
	require.Len(t, sequence.Steps, 2)
	assert.Equal(t, "sms", sequence.Steps[0].Channel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSequence_SharedSequenceStepsCannotBeRewritten(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewSequenceService(db, testLogger())

	// business_id NULL marks a shared sequence
	mock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sequenceRows().
			AddRow(5, nil, "Shared starter", "", "draft", 100, 0, "UTC", true, time.Now(), time.Now()))

	steps := []SequenceStepInput{{StepOrder: 1, Channel: "email"}}
	_, err := svc.UpdateSequence(5, utils.Pointer(uint(7)), SequenceUpdate{Steps: &steps})
	assert.ErrorIs(t, err, ErrSequenceAccessDenied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSequence_SharedSequenceScalarsCannotBeChanged(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewSequenceService(db, testLogger())

	// Renaming or pausing a shared default is refused before any write.
	mock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sequenceRows().
			AddRow(5, nil, "Shared starter", "", "active", 100, 0, "UTC", true, time.Now(), time.Now()))

	_, err := svc.UpdateSequence(5, utils.Pointer(uint(7)), SequenceUpdate{
		Name:   utils.Pointer("Hijacked"),
		Status: utils.Pointer("paused"),
	})
	assert.ErrorIs(t, err, ErrSequenceAccessDenied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
