package models

import "time"

// ExportRecord is an append-only entry for every generated report file.
type ExportRecord struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"index;not null"`
	StorageKey string    `gorm:"size:255;not null"`
	URL        string    `gorm:"size:2048;not null"`
	CreatedAt  time.Time `gorm:"index"`
}
