package usecase

import (
	"database/sql"
	"sync"

	txndomain "localsync-backend/internal/transaction/domain"
	"localsync-backend/internal/transaction/repository"

	"gorm.io/gorm"
)

// Change reports one entity mutation performed inside a recorded unit
// of work.
type Change struct {
	Object   txndomain.ObjectType
	ObjectID string
	Event    txndomain.EventType
}

// TxRunner runs a function inside a database transaction, rolling back
// when it returns an error. *gorm.DB satisfies it.
type TxRunner interface {
	Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// Recorder couples entity mutations with their change-log entries.
// Every mutation path in the sync core (ingestion, thread creation,
// task completion) goes through Record, so a mutation can never become
// visible without its transaction and cursor order always matches
// causal order.
type Recorder struct {
	db        TxRunner
	txnRepo   repository.TransactionRepository
	connector *Connector

	mu       sync.Mutex
	accounts map[string]*sync.Mutex
}

func NewRecorder(db TxRunner, txnRepo repository.TransactionRepository, connector *Connector) *Recorder {
	return &Recorder{
		db:        db,
		txnRepo:   txnRepo,
		connector: connector,
		accounts:  make(map[string]*sync.Mutex),
	}
}

// accountLock returns the append lock for the account, creating it on
// first use. One lock per account keeps id assignment serialized
// without blocking other accounts.
func (r *Recorder) accountLock(accountID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.accounts[accountID]
	if !ok {
		lock = &sync.Mutex{}
		r.accounts[accountID] = lock
	}
	return lock
}

// Record runs fn inside a database transaction and appends one log
// entry per reported change. If fn or any append fails, the whole unit
// rolls back. Committed transactions are published to live listeners
// after the commit, in append order.
func (r *Recorder) Record(accountID string, fn func(tx *gorm.DB) ([]Change, error)) ([]*txndomain.Transaction, error) {
	lock := r.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	var txns []*txndomain.Transaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		changes, err := fn(tx)
		if err != nil {
			return err
		}
		for _, change := range changes {
			txn, err := r.txnRepo.AppendTx(tx, accountID, change.Object, change.ObjectID, change.Event)
			if err != nil {
				return err
			}
			txns = append(txns, txn)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if r.connector != nil {
		r.connector.Publish(accountID, txns)
	}
	return txns, nil
}
