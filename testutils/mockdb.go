package testutils

import (
	"database/sql"
	"io"
	"testing"

	"tasklist/backend/database"
	"tasklist/backend/logger"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

// QuietLogger discards everything below error.
func QuietLogger() *logrus.Logger {
	return logger.New("error", "text", io.Discard)
}

// SetupMockDB sets up a postgres-dialect gorm connection backed by sqlmock.
func SetupMockDB() (*database.Database, sqlmock.Sqlmock, func()) {
	var db *sql.DB
	var mock sqlmock.Sqlmock
	var err error

	db, mock, err = sqlmock.New()
	if err != nil {
		panic(err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	mockDB, err := database.Open(dialector, QuietLogger())
	if err != nil {
		panic(err)
	}

	close := func() {
		db.Close()
	}

	return mockDB, mock, close
}

// SetupSQLiteDB returns a migrated in-memory database that lives for the
// duration of the test.
func SetupSQLiteDB(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:?_foreign_keys=on"), QuietLogger())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		t.Fatalf("failed to get test database handle: %v", err)
	}
	// Each connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	if err := database.RunMigrations(db.DB); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}
