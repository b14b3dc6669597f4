package domain

import "time"

// Label is a provider folder or Gmail label tracked for an account.
type Label struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	AccountID string    `json:"account_id" gorm:"index;size:36;not null"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
