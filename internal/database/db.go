package database

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
)

// Open connects to the order store. Supported drivers are "sqlite3" and
// "postgres", matching the deployments the addon targets.
func Open(driver, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(100)
	db.DB().SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate creates and updates all required tables and ensures the default
// stock location exists.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Order{},
		&models.WorkOrder{},
		&models.Robot{},
		&models.WorkCenter{},
		&models.Product{},
		&models.BillOfMaterials{},
		&models.BOMLine{},
		&models.BOMOperation{},
		&models.StockLocation{},
		&models.StockQuant{},
		&models.StockMove{},
	).Error
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Ensure default data exists after migration.
	var count int
	db.Model(&models.StockLocation{}).
		Where("usage = ?", string(models.LocationUsageInternal)).
		Count(&count)
	if count == 0 {
		loc := models.StockLocation{Name: "Stock", Usage: string(models.LocationUsageInternal)}
		if err := db.Create(&loc).Error; err != nil {
			return fmt.Errorf("failed to create default stock location: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
