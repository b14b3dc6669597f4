package repository

import (
	"time"

	txndomain "localsync-backend/internal/transaction/domain"

	"gorm.io/gorm"
)

// TransactionRepository is the append-only change log for one database.
type TransactionRepository interface {
	// AppendTx appends a new transaction inside the caller's gorm
	// transaction, so the log entry commits or rolls back together with
	// the entity mutation it records. Callers must serialize appends per
	// account (the recorder does this).
	AppendTx(tx *gorm.DB, accountID string, object txndomain.ObjectType, objectID string, event txndomain.EventType) (*txndomain.Transaction, error)

	// FindSince returns all transactions with id > cursor for the
	// account, in ascending id order.
	FindSince(accountID string, cursor uint64) ([]*txndomain.Transaction, error)

	// FindCreatedSince returns all transactions created at or after the
	// given time, in ascending id order. Used when a subscriber connects
	// without a cursor.
	FindCreatedSince(accountID string, since time.Time) ([]*txndomain.Transaction, error)

	// Latest returns the most recent transaction for the account, or
	// nil if none exist.
	Latest(accountID string) (*txndomain.Transaction, error)
}
