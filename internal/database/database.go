package database

import (
	"fmt"
	"time"

	"foodtasker/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openOrderIndex backs the one-undelivered-order-per-customer rule at the
// storage layer. Both PostgreSQL and SQLite support partial indexes.
const openOrderIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_one_open_per_customer
	ON orders (customer_id) WHERE status <> 'DELIVERED'`

// Open connects to the configured database driver and returns a GORM handle.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// SQLite allows a single writer; one connection avoids "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates all tables and the open-order index.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Restaurant{},
		&models.Meal{},
		&models.Order{},
		&models.OrderDetails{},
		&models.AccessToken{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	if err := db.Exec(openOrderIndex).Error; err != nil {
		return fmt.Errorf("failed to create open order index: %w", err)
	}
	return nil
}
