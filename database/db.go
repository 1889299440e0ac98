package database

import (
	"context"
	"fmt"

	"tasklist/backend/config"
	"tasklist/backend/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Database struct {
	DB  *gorm.DB
	log *logrus.Logger
}

// Dialector picks the gorm driver named by cfg.DBDriver.
func Dialector(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		// Foreign keys are off by default in sqlite; the task -> user cascade needs them.
		return sqlite.Open(cfg.DBPath + "?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// Setup connects to the configured database and applies migrations.
func Setup(cfg config.Config, log *logrus.Logger) (*Database, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := Open(dialector, log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)

	log.WithField("driver", cfg.DBDriver).Info("Running database migrations...")
	if err := RunMigrations(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database migrations completed successfully")

	return db, nil
}

// Open wraps a gorm connection without touching the schema.
func Open(dialector gorm.Dialector, log *logrus.Logger) (*Database, error) {
	gormConfig := &gorm.Config{
		Logger:                 logger.Gorm(log),
		AllowGlobalUpdate:      false,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{DB: db, log: log}, nil
}

// Ping checks that the database answers within ctx.
func (d *Database) Ping(ctx context.Context) error {
	if d == nil || d.DB == nil {
		return fmt.Errorf("database is not initialized")
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() {
	if d.DB == nil {
		d.logger().Warn("Database connection is nil, nothing to close.")
		return
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		d.logger().WithError(err).Error("Failed to get database connection")
		return
	}
	if err := sqlDB.Close(); err != nil {
		d.logger().WithError(err).Error("Failed to close database connection")
	}
}

func (d *Database) logger() *logrus.Logger {
	if d.log == nil {
		return logrus.StandardLogger()
	}
	return d.log
}
