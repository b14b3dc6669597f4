package usecase

import (
	"context"
	"encoding/json"
	"log"
	"time"

	txndomain "localsync-backend/internal/transaction/domain"
	txnrepo "localsync-backend/internal/transaction/repository"
	txnusecase "localsync-backend/internal/transaction/usecase"
)

// heartbeat is the keep-alive token interleaved with data lines. It is
// a bare newline so consumers can skip empty lines without parsing.
var heartbeat = []byte("\n")

// DeltaUsecase defines the interface for the delta distribution service
type DeltaUsecase interface {
	// Subscribe opens a per-consumer stream of newline-delimited JSON
	// transaction lines interleaved with heartbeat lines. If cursor is
	// non-nil, every transaction with id > cursor is replayed first;
	// otherwise only transactions recorded from now on are streamed.
	// The stream ends when ctx is cancelled (consumer disconnect) or
	// when the consumer falls too far behind the live tail.
	Subscribe(ctx context.Context, accountID string, cursor *uint64) <-chan []byte

	// LatestCursor returns the highest transaction id recorded for the
	// account, or nil if no transactions exist.
	LatestCursor(accountID string) (*uint64, error)
}

type deltaUsecase struct {
	txnRepo   txnrepo.TransactionRepository
	connector *txnusecase.Connector
	inflaters Inflaters
	heartbeat time.Duration
}

func NewDeltaUsecase(txnRepo txnrepo.TransactionRepository, connector *txnusecase.Connector, inflaters Inflaters, heartbeatInterval time.Duration) DeltaUsecase {
	if heartbeatInterval <= 0 {
		heartbeatInterval = time.Second
	}
	return &deltaUsecase{
		txnRepo:   txnRepo,
		connector: connector,
		inflaters: inflaters,
		heartbeat: heartbeatInterval,
	}
}

func (u *deltaUsecase) LatestCursor(accountID string) (*uint64, error) {
	latest, err := u.txnRepo.Latest(accountID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, nil
	}
	cursor := latest.ID
	return &cursor, nil
}

func (u *deltaUsecase) Subscribe(ctx context.Context, accountID string, cursor *uint64) <-chan []byte {
	out := make(chan []byte)

	// The live listener registers before the catch-up query runs, so a
	// transaction appended in between shows up on both sides and is
	// deduplicated by id, never lost.
	listener := u.connector.Subscribe(accountID)
	subscribedAt := time.Now()

	go func() {
		defer close(out)
		defer listener.Close()

		var catchup []*txndomain.Transaction
		var err error
		if cursor != nil {
			catchup, err = u.txnRepo.FindSince(accountID, *cursor)
		} else {
			catchup, err = u.txnRepo.FindCreatedSince(accountID, subscribedAt)
		}
		if err != nil {
			log.Printf("[Delta] catch-up query failed for account %s: %v", accountID, err)
			return
		}

		var lastID uint64
		if cursor != nil {
			lastID = *cursor
		}
		if !u.emit(ctx, out, accountID, catchup, &lastID) {
			return
		}

		ticker := time.NewTicker(u.heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !u.send(ctx, out, heartbeat) {
					return
				}
			case txn, ok := <-listener.C:
				if !ok {
					// Dropped for lagging; the consumer reconnects
					// with its last cursor and loses nothing.
					log.Printf("[Delta] subscriber for account %s fell behind, closing stream", accountID)
					return
				}
				if !u.emit(ctx, out, accountID, []*txndomain.Transaction{txn}, &lastID) {
					return
				}
			}
		}
	}()

	return out
}

// emit inflates and writes the given transactions in order, skipping
// any id at or below *lastID (already delivered via catch-up). The
// connector hands the same *Transaction to every listener of the
// account, so Cursor and Attributes are only ever set on per-stream
// copies, never on the shared row.
func (u *deltaUsecase) emit(ctx context.Context, out chan<- []byte, accountID string, txns []*txndomain.Transaction, lastID *uint64) bool {
	pending := make([]*txndomain.Transaction, 0, len(txns))
	for _, txn := range txns {
		if txn.ID <= *lastID {
			continue
		}
		clone := *txn
		pending = append(pending, &clone)
	}
	if len(pending) == 0 {
		return true
	}

	u.inflaters.inflate(accountID, pending)

	for _, txn := range pending {
		txn.Cursor = txn.ID
		line, err := json.Marshal(txn)
		if err != nil {
			log.Printf("[Delta] failed to encode transaction %d for account %s: %v", txn.ID, accountID, err)
			continue
		}
		if !u.send(ctx, out, append(line, '\n')) {
			return false
		}
		*lastID = txn.ID
	}
	return true
}

func (u *deltaUsecase) send(ctx context.Context, out chan<- []byte, line []byte) bool {
	select {
	case out <- line:
		return true
	case <-ctx.Done():
		return false
	}
}
