package repository

import (
	maildomain "localsync-backend/internal/mail/domain"

	"gorm.io/gorm"
)

// ThreadRepository defines the interface for thread data access.
// The Tx variants run in the caller's transaction so the matcher can
// query and mutate candidates inside one recorded unit of work.
type ThreadRepository interface {
	// CreateTx creates a new thread
	CreateTx(tx *gorm.DB, thread *maildomain.Thread) error

	// SaveTx persists changes to an existing thread
	SaveTx(tx *gorm.DB, thread *maildomain.Thread) error

	// FindByID finds a thread with its messages loaded
	FindByID(accountID, id string) (*maildomain.Thread, error)

	// FindByIDTx finds a thread by id in the caller's transaction,
	// without loading messages
	FindByIDTx(tx *gorm.DB, accountID, id string) (*maildomain.Thread, error)

	// FindByProviderThreadIDTx finds the thread carrying the given
	// provider-native thread id
	FindByProviderThreadIDTx(tx *gorm.DB, accountID, providerThreadID string) (*maildomain.Thread, error)

	// FindByCleanedSubjectTx returns candidate threads with the given
	// cleaned subject, most recent first, messages loaded
	FindByCleanedSubjectTx(tx *gorm.DB, accountID, cleanedSubject string) ([]*maildomain.Thread, error)

	// FindByIDs returns the threads with the given ids (for inflation)
	FindByIDs(accountID string, ids []string) ([]*maildomain.Thread, error)
}
