package repository

import (
	maildomain "localsync-backend/internal/mail/domain"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	// CreateTx creates a new message
	CreateTx(tx *gorm.DB, message *maildomain.Message) error

	// SaveTx persists changes to an existing message
	SaveTx(tx *gorm.DB, message *maildomain.Message) error

	// FindByMessageIDTx finds a message by its Message-Id header value
	FindByMessageIDTx(tx *gorm.DB, accountID, messageID string) (*maildomain.Message, error)

	// FindByThreadTx returns all messages of a thread in ascending date order
	FindByThreadTx(tx *gorm.DB, accountID, threadID string) ([]*maildomain.Message, error)

	// FindByIDs returns the messages with the given ids (for inflation)
	FindByIDs(accountID string, ids []string) ([]*maildomain.Message, error)
}
