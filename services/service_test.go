package services

import (
	"io"
	"log"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens GORM over a sqlmock connection. SkipDefaultTransaction
// keeps single-statement writes free of BEGIN/COMMIT noise so only explicit
// transactions show up in expectations.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func managerScope(businessID uint) Scope {
	return Scope{UserID: 1, Role: "manager", BusinessID: &businessID}
}

func salesScope(userID, businessID uint) Scope {
	return Scope{UserID: userID, Role: "sales", BusinessID: &businessID}
}
