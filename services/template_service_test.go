package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudgreet/utils"
)

func templateRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "business_id", "name", "channel", "subject", "body",
		"compliance_footer", "is_active", "is_default", "created_at", "updated_at",
	})
}

func TestListTemplates_IncludesSharedDefaults(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewTemplateService(db, testLogger())

	mock.ExpectQuery(`SELECT \* FROM "templates" WHERE \(business_id = \$1 OR business_id IS NULL\)`).
		WithArgs(uint(7)).
		WillReturnRows(templateRows().
			AddRow(2, 7, "Roof intro", "email", nil, "Hi {{name}}", "Reply STOP to opt out", true, false, time.Now(), time.Now()).
			AddRow(1, nil, "Default SMS", "sms", nil, "Hello", "Reply STOP to opt out", true, true, time.Now(), time.Now()))

	templates, err := svc.ListTemplates(utils.Pointer(uint(7)))
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Nil(t, templates[1].BusinessID)
	assert.True(t, templates[1].IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTemplate_HonorsActiveAndDefaultFlags(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewTemplateService(db, testLogger())

	mock.ExpectQuery(`INSERT INTO "templates"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	template, err := svc.CreateTemplate(utils.Pointer(uint(7)), TemplateInput{
		Name:             "Paused intro",
		Channel:          "email",
		Body:             "Hi {{name}}",
		ComplianceFooter: "Reply STOP to opt out",
		IsActive:         utils.Pointer(false),
		IsDefault:        utils.Pointer(true),
	})
	require.NoError(t, err)
	assert.False(t, template.IsActive)
	assert.True(t, template.IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTemplate_OnlyProvidedFieldsChange(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewTemplateService(db, testLogger())

	mock.ExpectExec(`UPDATE "templates" SET "body"=\$1,"updated_at"=\$2 WHERE id = \$3 AND business_id = \$4`).
		WithArgs("New body", sqlmock.AnyArg(), uint(3), uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "templates"`).
		WillReturnRows(templateRows().
			AddRow(3, 7, "Roof intro", "email", nil, "New body", "Reply STOP to opt out", true, false, time.Now(), time.Now()))

	template, err := svc.UpdateTemplate(3, utils.Pointer(uint(7)), TemplateUpdate{Body: utils.Pointer("New body")})
	require.NoError(t, err)
	assert.Equal(t, "New body", template.Body)
	assert.Equal(t, "Roof intro", template.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTemplate_EmptyPayloadPerformsNoWrite(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewTemplateService(db, testLogger())

	// No UPDATE expected, only the re-fetch.
	mock.ExpectQuery(`SELECT \* FROM "templates"`).
		WillReturnRows(templateRows().
			AddRow(3, 7, "Roof intro", "email", nil, "Hi", "Reply STOP to opt out", true, false, time.Now(), time.Now()))

	template, err := svc.UpdateTemplate(3, utils.Pointer(uint(7)), TemplateUpdate{})
	require.NoError(t, err)
	assert.Equal(t, uint(3), template.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTemplate_OtherTenantReadsAsNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewTemplateService(db, testLogger())

	mock.ExpectExec(`UPDATE "templates"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.UpdateTemplate(3, utils.Pointer(uint(99)), TemplateUpdate{Body: utils.Pointer("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTemplate_MissingRowReturnsNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewTemplateService(db, testLogger())

	mock.ExpectExec(`UPDATE "templates" SET "deleted_at"=\$1 WHERE id = \$2 AND business_id = \$3`).
		WithArgs(sqlmock.AnyArg(), uint(42), uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.DeleteTemplate(42, utils.Pointer(uint(7)))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
