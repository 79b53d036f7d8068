// File: /database/database.go
package database

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trailcraft-api/models"
)

// Initialize opens the MySQL connection.
func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the trail and settings tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Trail{},
		&models.Setting{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	addCustomIndexes(db)
	return nil
}

func addCustomIndexes(db *gorm.DB) {
	indexes := map[string]string{
		"idx_trails_country_city": "CREATE INDEX idx_trails_country_city ON trails(country, city)",
		"idx_trails_created_at":   "CREATE INDEX idx_trails_created_at ON trails(created_at DESC)",
	}
	for name, stmt := range indexes {
		if db.Migrator().HasIndex(&models.Trail{}, name) {
			continue
		}
		if err := db.Exec(stmt).Error; err != nil {
			log.Printf("Warning: Could not create index %s: %v", name, err)
		}
	}
}
