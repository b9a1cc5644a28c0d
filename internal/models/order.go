package models

import "time"

const (
	OrderPending = "PENDING"
	OrderSuccess = "SUCCESS"
	OrderFailed  = "FAILED"
)

// PaymentOrder tracks one premium purchase attempt.
type PaymentOrder struct {
	ID          uint   `gorm:"primaryKey"`
	OrderID     string `gorm:"size:100;uniqueIndex;not null"`
	AmountCents int64  `gorm:"not null"`
	Status      string `gorm:"size:16;not null;default:PENDING"`
	UserID      uint   `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
