package domain

import "time"

// Account is one synced mail account. Each account owns its own change
// log and syncback queue; nothing in the core crosses account
// boundaries.
type Account struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	EmailAddress string    `json:"email_address" gorm:"uniqueIndex;not null"`
	Provider     string    `json:"provider" gorm:"default:imap"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
