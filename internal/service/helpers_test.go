package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/as0628/expense-tracker-project/internal/config"
	"github.com/as0628/expense-tracker-project/internal/database"
	"github.com/as0628/expense-tracker-project/internal/logging"
	"github.com/as0628/expense-tracker-project/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// a fixed mid-day instant keeps daily windows away from midnight
var testNow = time.Date(2026, time.March, 11, 12, 0, 0, 0, time.Local)

func fixedClock() time.Time { return testNow }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Init(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createAccount(t *testing.T, db *gorm.DB, name string, premium bool) *models.Account {
	t.Helper()

	account := models.Account{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		IsPremium:    premium,
	}
	require.NoError(t, db.Create(&account).Error)
	return &account
}

func newLedger(db *gorm.DB) *LedgerService {
	s := NewLedgerService(db, logging.Discard())
	s.now = fixedClock
	return s
}

func totalExpense(t *testing.T, db *gorm.DB, ownerID uint) int64 {
	t.Helper()

	var account models.Account
	require.NoError(t, db.First(&account, ownerID).Error)
	return account.TotalExpense
}

// expenseSum recomputes what total_expense must equal.
func expenseSum(t *testing.T, db *gorm.DB, ownerID uint) int64 {
	t.Helper()

	var sum int64
	require.NoError(t, db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("user_id = ? AND type = ?", ownerID, models.TypeExpense).
		Scan(&sum).Error)
	return sum
}

func requireInvariant(t *testing.T, db *gorm.DB, ownerID uint) {
	t.Helper()
	require.Equal(t, expenseSum(t, db, ownerID), totalExpense(t, db, ownerID))
}

func expense(amount, category string) TransactionInput {
	return TransactionInput{Amount: amount, Description: category + " spend", Category: category, Type: models.TypeExpense}
}

func income(amount, category string) TransactionInput {
	return TransactionInput{Amount: amount, Description: category + " income", Category: category, Type: models.TypeIncome}
}
