package database

import (
	"fmt"

	"github.com/as0628/expense-tracker-project/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.Transaction{},
		&models.PaymentOrder{},
		&models.ExportRecord{},
		&models.PasswordResetRequest{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
