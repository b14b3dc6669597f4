package repository

import (
	"localsync-backend/internal/account/domain"

	"gorm.io/gorm"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// CreateTx creates a new account inside the caller's transaction
	CreateTx(tx *gorm.DB, account *domain.Account) error

	// FindByID finds an account by its ID
	FindByID(id string) (*domain.Account, error)

	// FindByEmailAddress finds an account by its email address
	FindByEmailAddress(emailAddress string) (*domain.Account, error)
}
