package models

import "time"

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction 表示一笔收入或支出
// 金额用分存储，避免浮点误差，比如 12.34 = 1234 分
type Transaction struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"index;not null"`
	AmountCents int64     `gorm:"not null"`
	Description string    `gorm:"size:255;not null"`
	Category    string    `gorm:"size:100;not null"`
	Type        string    `gorm:"size:16;index;not null"`
	Note        string    `gorm:"size:255"`
	CreatedAt   time.Time `gorm:"index;not null"`
	UpdatedAt   time.Time
}

// ExpenseContribution is how much this row adds to the owner's total_expense.
func (t Transaction) ExpenseContribution() int64 {
	if t.Type == TypeExpense {
		return t.AmountCents
	}
	return 0
}
