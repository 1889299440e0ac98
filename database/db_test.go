package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"tasklist/backend/config"
	"tasklist/backend/logger"
	"tasklist/backend/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func quietLogger() *logrus.Logger {
	return logger.New("error", "text", io.Discard)
}

// openMemory pins the pool to one connection so every statement sees the same
// in-memory database.
func openMemory(t *testing.T) *Database {
	t.Helper()
	db, err := Open(sqlite.Open(":memory:"), quietLogger())
	require.NoError(t, err)
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestDialector(t *testing.T) {
	_, err := Dialector(config.Config{DBDriver: "postgres", DBHost: "localhost", DBPort: "5432"})
	assert.NoError(t, err)

	_, err = Dialector(config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	assert.NoError(t, err)

	_, err = Dialector(config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestSetupSQLite(t *testing.T) {
	cfg := config.Config{
		DBDriver:       "sqlite",
		DBPath:         filepath.Join(t.TempDir(), "tasks.db"),
		DBMaxIdleConns: 1,
		DBMaxOpenConns: 1,
	}

	db, err := Setup(cfg, quietLogger())
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.DB.Migrator().HasTable(&models.User{}))
	assert.True(t, db.DB.Migrator().HasTable(&models.Task{}))
	assert.NoError(t, db.Ping(context.Background()))
}

func TestStatusCheckConstraint(t *testing.T) {
	db := openMemory(t)
	defer db.Close()
	require.NoError(t, RunMigrations(db.DB))

	now := time.Now().UTC()
	task := models.Task{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Title:     "Broken",
		Status:    models.TaskStatus("archived"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	assert.Error(t, db.DB.Create(&task).Error)
}

func TestClose(t *testing.T) {
	db := openMemory(t)

	assert.NotPanics(t, func() {
		db.Close()
	})
	assert.Error(t, db.Ping(context.Background()))

	empty := &Database{}
	assert.NotPanics(t, func() {
		empty.Close()
	})
}

func TestPingUninitialized(t *testing.T) {
	var db *Database
	assert.Error(t, db.Ping(context.Background()))
}
