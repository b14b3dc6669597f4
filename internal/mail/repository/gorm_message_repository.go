package repository

import (
	"time"

	maildomain "localsync-backend/internal/mail/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormMessageRepository implements MessageRepository using GORM
type gormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new GORM-based MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) CreateTx(tx *gorm.DB, message *maildomain.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = time.Now()
	message.UpdatedAt = time.Now()
	return tx.Create(message).Error
}

func (r *gormMessageRepository) SaveTx(tx *gorm.DB, message *maildomain.Message) error {
	message.UpdatedAt = time.Now()
	return tx.Save(message).Error
}

func (r *gormMessageRepository) FindByMessageIDTx(tx *gorm.DB, accountID, messageID string) (*maildomain.Message, error) {
	var message maildomain.Message
	err := tx.Where("account_id = ? AND message_id = ?", accountID, messageID).
		First(&message).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *gormMessageRepository) FindByThreadTx(tx *gorm.DB, accountID, threadID string) ([]*maildomain.Message, error) {
	var messages []*maildomain.Message
	err := tx.Where("account_id = ? AND thread_id = ?", accountID, threadID).
		Order("date ASC").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *gormMessageRepository) FindByIDs(accountID string, ids []string) ([]*maildomain.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var messages []*maildomain.Message
	err := r.db.Where("account_id = ? AND id IN ?", accountID, ids).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
