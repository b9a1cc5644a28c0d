package models

import "time"

// PasswordResetRequest is created by a forgot-password call and consumed once.
type PasswordResetRequest struct {
	ID        string `gorm:"primaryKey;size:36"` // UUID
	UserID    uint   `gorm:"index;not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
}
