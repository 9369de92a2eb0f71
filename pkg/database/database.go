// Path: pkg/database/database.go
package database

import (
	"fmt"

	"bank-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the database and migrates the schema.
func InitDB(dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// createTables creates the necessary tables in the database.
func createTables(db *gorm.DB) error {
	err := db.AutoMigrate(&models.User{}, &models.Account{}, &models.Transaction{}, &models.Token{})
	if err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	return nil
}
