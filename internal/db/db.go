package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mgarnier/crewplan/internal/models"
)

var DB *gorm.DB

// Initialize sets up the database connection and runs migrations.
// An empty path uses ~/.crewplan/crewplan.db.
func Initialize(path string) error {
	if path == "" {
		var err error
		path, err = defaultDatabasePath()
		if err != nil {
			return fmt.Errorf("failed to get database path: %w", err)
		}
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create crewplan directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db

	// Every pooled connection to :memory: would be its own empty database.
	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func defaultDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".crewplan", "crewplan.db"), nil
}

// runMigrations creates/updates the database schema.
func runMigrations() error {
	return DB.AutoMigrate(
		&models.Task{},
		&models.TaskObject{},
		&models.Distribution{},
		&models.Crew{},
		&models.CrewMember{},
		&models.CrewScheduleDay{},
		&models.Absence{},
		&models.Holiday{},
		&models.ProductivityRatio{},
		&models.LaborEntry{},
	)
}

// Close closes the database connection.
func Close() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
