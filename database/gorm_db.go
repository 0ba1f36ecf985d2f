package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/camden-git/librarycatalog/config"
	"github.com/camden-git/librarycatalog/logger"
	"github.com/camden-git/librarycatalog/models"
)

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// NewGormConfig builds the GORM configuration shared by the server and tests.
// Foreign key constraints are never created: references between catalog
// records are checked by the application, not by the schema.
func NewGormConfig(sqlLogLevel string, log *logger.Logger) *gorm.Config {
	gormLogger := gormlogger.New(
		log.With("component", "gorm"),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(sqlLogLevel),
			IgnoreRecordNotFoundError: true,
		},
	)
	return &gorm.Config{
		Logger:                                   gormLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// InitGormDB initializes and returns a GORM database instance for the configured driver
func InitGormDB(cfg config.Config, baseLog *logger.Logger) (*gorm.DB, error) {
	log := baseLog.With("component", "database")

	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		dialector = sqlite.Open(cfg.DatabasePath)
	}

	db, err := gorm.Open(dialector, NewGormConfig(cfg.SQLLogLevel, baseLog))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database using GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}

	if cfg.DatabaseDriver == config.DriverSQLite {
		// enable write-ahead logging for better concurrency
		if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
			log.Warn("failed to set WAL mode", "error", err)
		}
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("GORM database initialized", "driver", cfg.DatabaseDriver)
	return db, nil
}

// AutoMigrateModels migrates the catalog schema
func AutoMigrateModels(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Book{}, "Genres", &models.BookGenre{}); err != nil {
		return fmt.Errorf("GORM join table setup failed: %w", err)
	}
	err := db.AutoMigrate(
		&models.Author{},
		&models.Genre{},
		&models.Book{},
		&models.BookGenre{},
		&models.BookInstance{},
	)
	if err != nil {
		return fmt.Errorf("GORM AutoMigrate failed: %w", err)
	}
	return nil
}

// CloseGormDB closes the pool behind db.
func CloseGormDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}
	return sqlDB.Close()
}
