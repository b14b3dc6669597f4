package repository

import (
	"time"

	"localsync-backend/internal/account/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormAccountRepository implements AccountRepository using GORM
type gormAccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new GORM-based AccountRepository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &gormAccountRepository{db: db}
}

func (r *gormAccountRepository) CreateTx(tx *gorm.DB, account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()
	return tx.Create(account).Error
}

func (r *gormAccountRepository) FindByID(id string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormAccountRepository) FindByEmailAddress(emailAddress string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.Where("email_address = ?", emailAddress).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}
