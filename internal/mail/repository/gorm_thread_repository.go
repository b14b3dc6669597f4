package repository

import (
	"time"

	maildomain "localsync-backend/internal/mail/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormThreadRepository implements ThreadRepository using GORM
type gormThreadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new GORM-based ThreadRepository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &gormThreadRepository{db: db}
}

func (r *gormThreadRepository) CreateTx(tx *gorm.DB, thread *maildomain.Thread) error {
	if thread.ID == "" {
		thread.ID = uuid.New().String()
	}
	thread.CreatedAt = time.Now()
	thread.UpdatedAt = time.Now()
	return tx.Create(thread).Error
}

func (r *gormThreadRepository) SaveTx(tx *gorm.DB, thread *maildomain.Thread) error {
	thread.UpdatedAt = time.Now()
	return tx.Omit("Messages").Save(thread).Error
}

func (r *gormThreadRepository) FindByID(accountID, id string) (*maildomain.Thread, error) {
	var thread maildomain.Thread
	err := r.db.Preload("Messages").
		Where("account_id = ? AND id = ?", accountID, id).
		First(&thread).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &thread, nil
}

func (r *gormThreadRepository) FindByIDTx(tx *gorm.DB, accountID, id string) (*maildomain.Thread, error) {
	var thread maildomain.Thread
	err := tx.Where("account_id = ? AND id = ?", accountID, id).
		First(&thread).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &thread, nil
}

func (r *gormThreadRepository) FindByProviderThreadIDTx(tx *gorm.DB, accountID, providerThreadID string) (*maildomain.Thread, error) {
	var thread maildomain.Thread
	err := tx.Where("account_id = ? AND provider_thread_id = ?", accountID, providerThreadID).
		First(&thread).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &thread, nil
}

func (r *gormThreadRepository) FindByCleanedSubjectTx(tx *gorm.DB, accountID, cleanedSubject string) ([]*maildomain.Thread, error) {
	var threads []*maildomain.Thread
	err := tx.Preload("Messages").
		Where("account_id = ? AND cleaned_subject = ?", accountID, cleanedSubject).
		Order("created_at DESC").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

func (r *gormThreadRepository) FindByIDs(accountID string, ids []string) ([]*maildomain.Thread, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var threads []*maildomain.Thread
	err := r.db.Where("account_id = ? AND id IN ?", accountID, ids).
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}
