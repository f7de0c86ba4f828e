package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cloudgreet/models"
)

func newTestApp(t *testing.T, user *models.User) (*fiber.App, *OutreachController, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	})

	ctrl := NewOutreachController(db, log.New(io.Discard, "", 0))
	return app, ctrl, mock
}

func testUser() *models.User {
	businessID := uint(7)
	user := &models.User{
		Email:      "rep@cloudgreet.test",
		Name:       "Sam Reyes",
		Role:       "manager",
		BusinessID: &businessID,
		IsActive:   true,
	}
	user.ID = 3
	return user
}

func TestGetOutreachStats_RejectsUnknownRange(t *testing.T) {
	app, ctrl, mock := newTestApp(t, testUser())
	app.Get("/outreach/stats", ctrl.GetOutreachStats)

	req := httptest.NewRequest("GET", "/outreach/stats?range=365d", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTemplate_ValidationFailureSkipsDatabase(t *testing.T) {
	app, ctrl, mock := newTestApp(t, testUser())
	app.Post("/outreach/templates", ctrl.CreateTemplate)

	// Missing the compliance footer.
	body := `{"name":"Intro","channel":"email","body":"Hi"}`
	req := httptest.NewRequest("POST", "/outreach/templates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTemplate_ReturnsCreatedEnvelope(t *testing.T) {
	app, ctrl, mock := newTestApp(t, testUser())
	app.Post("/outreach/templates", ctrl.CreateTemplate)

	mock.ExpectQuery(`INSERT INTO "templates"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))

	body := `{"name":"Intro","channel":"email","body":"Hi {{name}}","complianceFooter":"Reply STOP to opt out"}`
	req := httptest.NewRequest("POST", "/outreach/templates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			ID      uint   `json:"id"`
			Channel string `json:"channel"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.True(t, payload.Success)
	assert.Equal(t, uint(21), payload.Data.ID)
	assert.Equal(t, "email", payload.Data.Channel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSequence_UnknownIDReturns404(t *testing.T) {
	app, ctrl, mock := newTestApp(t, testUser())
	app.Put("/outreach/sequences/:id", ctrl.UpdateSequence)

	mock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest("PUT", "/outreach/sequences/99", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
