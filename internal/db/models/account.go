package models

import "time"

// Account stores an OAuth identity and its tokens as the nexus proxy sees it.
type Account struct {
	ID           string    `gorm:"primaryKey"` // UUID
	Email        string    `gorm:"uniqueIndex:idx_email_provider"`
	Provider     string    `gorm:"uniqueIndex:idx_email_provider"` // e.g., "antigravity"
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	LastUsedAt   time.Time
	IsActive     bool   `gorm:"default:true"`
	IsPrimary    bool   `gorm:"default:false"`
	Metadata     string // JSON blob: project_id, source file, descriptor digest
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
