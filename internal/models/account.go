package models

import "time"

// Account represents an application user together with its spend accumulator.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsPremium    bool      `gorm:"not null;default:false;index" json:"is_premium"`
	TotalExpense int64     `gorm:"not null;default:0;index" json:"-"` // 分，只由账目服务增减
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}
