package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/as0628/expense-tracker-project/internal/apperr"
	"github.com/as0628/expense-tracker-project/internal/models"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TransactionInput is the explicit schema accepted by add and update.
type TransactionInput struct {
	Amount      string
	Description string
	Category    string
	Type        string
	Note        string
}

// toModel validates the input and returns the row fields it describes.
func (in TransactionInput) toModel(op string) (models.Transaction, error) {
	amountStr := strings.TrimSpace(in.Amount)
	if amountStr == "" {
		return models.Transaction{}, apperr.Validation(op, "amount is required")
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return models.Transaction{}, apperr.Validation(op, "amount must be a number")
	}
	if err := util.ValidateAmount(amount); err != nil {
		return models.Transaction{}, apperr.Validation(op, err.Error())
	}
	cents := amount.Shift(2).Round(0).IntPart()
	if cents <= 0 {
		return models.Transaction{}, apperr.Validation(op, "amount must be at least 0.01")
	}

	desc := strings.TrimSpace(in.Description)
	if err := util.ValidateDescription(desc); err != nil {
		return models.Transaction{}, apperr.Validation(op, err.Error())
	}
	category := strings.TrimSpace(in.Category)
	if err := util.ValidateCategory(category); err != nil {
		return models.Transaction{}, apperr.Validation(op, err.Error())
	}
	txType := strings.TrimSpace(in.Type)
	if err := util.ValidateType(txType); err != nil {
		return models.Transaction{}, apperr.Validation(op, err.Error())
	}
	note := strings.TrimSpace(in.Note)
	if err := util.ValidateNote(note); err != nil {
		return models.Transaction{}, apperr.Validation(op, err.Error())
	}

	return models.Transaction{
		AmountCents: cents,
		Description: desc,
		Category:    category,
		Type:        txType,
		Note:        note,
	}, nil
}

// TransactionPage is one page of an owner's transactions.
type TransactionPage struct {
	Items      []models.Transaction
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// LedgerService is the only writer of transactions and of
// accounts.total_expense. Every mutation changes both in one DB transaction.
type LedgerService struct {
	db  *gorm.DB
	log *logrus.Logger
	now func() time.Time
}

func NewLedgerService(db *gorm.DB, log *logrus.Logger) *LedgerService {
	return &LedgerService{db: db, log: log, now: time.Now}
}

// Add inserts a transaction and, for expenses, bumps the owner's total.
func (s *LedgerService) Add(ctx context.Context, ownerID uint, in TransactionInput) (uint, error) {
	const op = "ledger.Add"

	tx, err := in.toModel(op)
	if err != nil {
		return 0, err
	}
	tx.UserID = ownerID
	tx.CreatedAt = s.now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Create(&tx).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return applyExpenseDelta(db, ownerID, tx.ExpenseContribution())
	})
	if err != nil {
		return 0, s.fail(op, ownerID, err)
	}
	return tx.ID, nil
}

// Update rewrites amount, description, category, type and note of an owned
// transaction. The accumulator moves by the change in expense contribution,
// which covers every (old type, new type) combination.
func (s *LedgerService) Update(ctx context.Context, ownerID, id uint, in TransactionInput) error {
	const op = "ledger.Update"

	next, err := in.toModel(op)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		old, err := findOwned(db, op, ownerID, id)
		if err != nil {
			return err
		}

		// the row must still hold what we read, otherwise the delta is stale
		res := db.Model(&models.Transaction{}).
			Where("id = ? AND user_id = ? AND amount_cents = ? AND type = ?", id, ownerID, old.AmountCents, old.Type).
			Updates(map[string]interface{}{
				"amount_cents": next.AmountCents,
				"description":  next.Description,
				"category":     next.Category,
				"type":         next.Type,
				"note":         next.Note,
			})
		if res.Error != nil {
			return fmt.Errorf("update transaction: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict(op, "transaction was modified concurrently, please retry")
		}

		return applyExpenseDelta(db, ownerID, next.ExpenseContribution()-old.ExpenseContribution())
	})
	if err != nil {
		return s.fail(op, ownerID, err)
	}
	return nil
}

// Delete removes an owned transaction and takes back its expense contribution.
func (s *LedgerService) Delete(ctx context.Context, ownerID, id uint) error {
	const op = "ledger.Delete"

	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		old, err := findOwned(db, op, ownerID, id)
		if err != nil {
			return err
		}

		res := db.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Transaction{})
		if res.Error != nil {
			return fmt.Errorf("delete transaction: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(op, "transaction not found")
		}

		return applyExpenseDelta(db, ownerID, -old.ExpenseContribution())
	})
	if err != nil {
		return s.fail(op, ownerID, err)
	}
	return nil
}

// Get returns one owned transaction.
func (s *LedgerService) Get(ctx context.Context, ownerID, id uint) (*models.Transaction, error) {
	const op = "ledger.Get"

	tx, err := findOwned(s.db.WithContext(ctx), op, ownerID, id)
	if err != nil {
		return nil, s.fail(op, ownerID, err)
	}
	return tx, nil
}

// List returns all of the owner's transactions, newest first.
func (s *LedgerService) List(ctx context.Context, ownerID uint) ([]models.Transaction, error) {
	const op = "ledger.List"

	var items []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, s.fail(op, ownerID, fmt.Errorf("list transactions: %w", err))
	}
	return items, nil
}

// ListPage is the paginated variant of List.
func (s *LedgerService) ListPage(ctx context.Context, ownerID uint, page, limit int) (*TransactionPage, error) {
	const op = "ledger.ListPage"

	p := util.Paginate(page, limit, 10, 1, 100)
	base := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", ownerID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, s.fail(op, ownerID, fmt.Errorf("count transactions: %w", err))
	}

	var items []models.Transaction
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(p.Limit).
		Offset(p.Offset).
		Find(&items).Error; err != nil {
		return nil, s.fail(op, ownerID, fmt.Errorf("list transactions: %w", err))
	}

	return &TransactionPage{
		Items:      items,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: util.TotalPages(total, p.Limit),
	}, nil
}

func findOwned(db *gorm.DB, op string, ownerID, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := db.Where("id = ? AND user_id = ?", id, ownerID).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(op, "transaction not found")
		}
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	return &tx, nil
}

// applyExpenseDelta moves total_expense with an in-database increment so
// concurrent writers never lose an update.
func applyExpenseDelta(db *gorm.DB, ownerID uint, delta int64) error {
	if delta == 0 {
		return nil
	}
	res := db.Model(&models.Account{}).
		Where("id = ?", ownerID).
		UpdateColumn("total_expense", gorm.Expr("total_expense + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("update total_expense: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update total_expense: account %d not found", ownerID)
	}
	return nil
}

// fail logs err with owner and operation, and turns anything that is not
// already an *apperr.Error into an unexpected error.
func (s *LedgerService) fail(op string, ownerID uint, err error) error {
	return failWith(s.log, op, ownerID, err)
}

func failWith(log *logrus.Logger, op string, ownerID uint, err error) error {
	entry := log.WithFields(logrus.Fields{
		"op":       op,
		"owner_id": ownerID,
	})
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		entry.WithError(err).Info("request rejected")
		return err
	}
	entry.WithError(err).Error("operation failed")
	return apperr.Unexpected(op, err)
}
