package repository

import (
	"time"

	txndomain "localsync-backend/internal/transaction/domain"

	"gorm.io/gorm"
)

// gormTransactionRepository implements TransactionRepository using GORM
type gormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new GORM-based TransactionRepository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &gormTransactionRepository{db: db}
}

func (r *gormTransactionRepository) AppendTx(tx *gorm.DB, accountID string, object txndomain.ObjectType, objectID string, event txndomain.EventType) (*txndomain.Transaction, error) {
	// Next id = max + 1 within the account. The recorder serializes
	// appends per account, so this read-then-insert cannot race.
	var lastID uint64
	err := tx.Model(&txndomain.Transaction{}).
		Where("account_id = ?", accountID).
		Select("COALESCE(MAX(id), 0)").
		Scan(&lastID).Error
	if err != nil {
		return nil, err
	}

	txn := &txndomain.Transaction{
		AccountID: accountID,
		ID:        lastID + 1,
		Object:    object,
		ObjectID:  objectID,
		Event:     event,
		CreatedAt: time.Now(),
	}
	txn.Cursor = txn.ID

	if err := tx.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *gormTransactionRepository) FindSince(accountID string, cursor uint64) ([]*txndomain.Transaction, error) {
	var txns []*txndomain.Transaction
	err := r.db.Where("account_id = ? AND id > ?", accountID, cursor).
		Order("id ASC").Find(&txns).Error
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		t.Cursor = t.ID
	}
	return txns, nil
}

func (r *gormTransactionRepository) FindCreatedSince(accountID string, since time.Time) ([]*txndomain.Transaction, error) {
	var txns []*txndomain.Transaction
	err := r.db.Where("account_id = ? AND created_at >= ?", accountID, since).
		Order("id ASC").Find(&txns).Error
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		t.Cursor = t.ID
	}
	return txns, nil
}

func (r *gormTransactionRepository) Latest(accountID string) (*txndomain.Transaction, error) {
	var txn txndomain.Transaction
	err := r.db.Where("account_id = ?", accountID).
		Order("id DESC").First(&txn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	txn.Cursor = txn.ID
	return &txn, nil
}
