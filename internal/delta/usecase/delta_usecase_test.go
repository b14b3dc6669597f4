package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	txndomain "localsync-backend/internal/transaction/domain"
	txnusecase "localsync-backend/internal/transaction/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeTxnRepo struct {
	mu   sync.Mutex
	txns []*txndomain.Transaction
}

func (r *fakeTxnRepo) AppendTx(tx *gorm.DB, accountID string, object txndomain.ObjectType, objectID string, event txndomain.EventType) (*txndomain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn := &txndomain.Transaction{
		AccountID: accountID,
		ID:        uint64(len(r.txns) + 1),
		Object:    object,
		ObjectID:  objectID,
		Event:     event,
		CreatedAt: time.Now(),
	}
	r.txns = append(r.txns, txn)
	return txn, nil
}

func (r *fakeTxnRepo) FindSince(accountID string, cursor uint64) ([]*txndomain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matches []*txndomain.Transaction
	for _, txn := range r.txns {
		if txn.AccountID == accountID && txn.ID > cursor {
			matches = append(matches, txn)
		}
	}
	return matches, nil
}

func (r *fakeTxnRepo) FindCreatedSince(accountID string, since time.Time) ([]*txndomain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matches []*txndomain.Transaction
	for _, txn := range r.txns {
		if txn.AccountID == accountID && !txn.CreatedAt.Before(since) {
			matches = append(matches, txn)
		}
	}
	return matches, nil
}

func (r *fakeTxnRepo) Latest(accountID string) (*txndomain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *txndomain.Transaction
	for _, txn := range r.txns {
		if txn.AccountID == accountID {
			latest = txn
		}
	}
	return latest, nil
}

func (r *fakeTxnRepo) seed(accountID string, id uint64, objectID string, createdAt time.Time) *txndomain.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn := &txndomain.Transaction{
		AccountID: accountID,
		ID:        id,
		Object:    txndomain.ObjectMessage,
		ObjectID:  objectID,
		Event:     txndomain.EventCreate,
		CreatedAt: createdAt,
	}
	r.txns = append(r.txns, txn)
	return txn
}

// staticInflaters serves canned snapshots for message ids.
func staticInflaters(snapshots map[string]json.RawMessage) Inflaters {
	return Inflaters{
		txndomain.ObjectMessage: InflaterFunc(func(accountID string, ids []string) (map[string]json.RawMessage, error) {
			result := make(map[string]json.RawMessage)
			for _, id := range ids {
				if snapshot, ok := snapshots[id]; ok {
					result[id] = snapshot
				}
			}
			return result, nil
		}),
	}
}

type deltaLine struct {
	ID         uint64          `json:"id"`
	Cursor     uint64          `json:"cursor"`
	ObjectID   string          `json:"objectId"`
	Attributes json.RawMessage `json:"attributes"`
}

// readDataLines collects n non-heartbeat lines from the stream.
func readDataLines(t *testing.T, stream <-chan []byte, n int) []deltaLine {
	t.Helper()
	var lines []deltaLine
	deadline := time.After(2 * time.Second)
	for len(lines) < n {
		select {
		case raw, ok := <-stream:
			require.True(t, ok, "stream closed after %d of %d lines", len(lines), n)
			if len(raw) == 1 && raw[0] == '\n' {
				continue
			}
			var line deltaLine
			require.NoError(t, json.Unmarshal(raw, &line))
			lines = append(lines, line)
		case <-deadline:
			t.Fatalf("timed out after %d of %d lines", len(lines), n)
		}
	}
	return lines
}

func cursorPtr(v uint64) *uint64 { return &v }

func TestSubscribeReplaysFromCursor(t *testing.T) {
	repo := &fakeTxnRepo{}
	past := time.Now().Add(-time.Hour)
	repo.seed("a1", 1, "m1", past)
	repo.seed("a1", 2, "m2", past)
	repo.seed("a1", 3, "m3", past)
	repo.seed("other", 4, "m4", past)

	connector := txnusecase.NewConnector()
	u := NewDeltaUsecase(repo, connector, staticInflaters(nil), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := u.Subscribe(ctx, "a1", cursorPtr(1))
	lines := readDataLines(t, stream, 2)

	assert.Equal(t, uint64(2), lines[0].ID)
	assert.Equal(t, uint64(3), lines[1].ID)
	assert.Equal(t, lines[0].ID, lines[0].Cursor)
	assert.Equal(t, lines[1].ID, lines[1].Cursor)
}

func TestSubscribeDeduplicatesCatchupAndLive(t *testing.T) {
	repo := &fakeTxnRepo{}
	seeded := repo.seed("a1", 1, "m1", time.Now().Add(-time.Hour))

	connector := txnusecase.NewConnector()
	u := NewDeltaUsecase(repo, connector, staticInflaters(nil), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := u.Subscribe(ctx, "a1", cursorPtr(0))

	// Republish the same transaction on the live path; it already went
	// out during catch-up so only the new one should follow.
	fresh := repo.seed("a1", 2, "m2", time.Now())
	connector.Publish("a1", []*txndomain.Transaction{seeded, fresh})

	lines := readDataLines(t, stream, 2)
	assert.Equal(t, uint64(1), lines[0].ID)
	assert.Equal(t, uint64(2), lines[1].ID)

	select {
	case raw, ok := <-stream:
		if ok {
			assert.Equal(t, []byte("\n"), raw, "unexpected extra data line")
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeWithoutCursorStreamsLiveOnly(t *testing.T) {
	repo := &fakeTxnRepo{}
	repo.seed("a1", 1, "m1", time.Now().Add(-time.Hour))

	connector := txnusecase.NewConnector()
	u := NewDeltaUsecase(repo, connector, staticInflaters(nil), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := u.Subscribe(ctx, "a1", nil)

	live := repo.seed("a1", 2, "m2", time.Now())
	connector.Publish("a1", []*txndomain.Transaction{live})

	lines := readDataLines(t, stream, 1)
	assert.Equal(t, uint64(2), lines[0].ID)
}

func TestSubscribeAttachesSnapshots(t *testing.T) {
	repo := &fakeTxnRepo{}
	past := time.Now().Add(-time.Hour)
	repo.seed("a1", 1, "m1", past)
	repo.seed("a1", 2, "gone", past)

	connector := txnusecase.NewConnector()
	u := NewDeltaUsecase(repo, connector, staticInflaters(map[string]json.RawMessage{
		"m1": json.RawMessage(`{"subject":"Hello"}`),
	}), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := u.Subscribe(ctx, "a1", cursorPtr(0))
	lines := readDataLines(t, stream, 2)

	assert.JSONEq(t, `{"subject":"Hello"}`, string(lines[0].Attributes))
	// A vanished entity still streams, just without a snapshot.
	assert.Empty(t, lines[1].Attributes)
}

func TestSubscribersDoNotShareTransactionState(t *testing.T) {
	repo := &fakeTxnRepo{}
	connector := txnusecase.NewConnector()
	u := NewDeltaUsecase(repo, connector, staticInflaters(map[string]json.RawMessage{
		"m1": json.RawMessage(`{"subject":"Hello"}`),
	}), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := u.Subscribe(ctx, "a1", cursorPtr(0))
	second := u.Subscribe(ctx, "a1", cursorPtr(0))

	// Both streams receive the same published pointer; each must work on
	// its own copy.
	live := repo.seed("a1", 1, "m1", time.Now())
	connector.Publish("a1", []*txndomain.Transaction{live})

	for _, stream := range []<-chan []byte{first, second} {
		lines := readDataLines(t, stream, 1)
		assert.Equal(t, uint64(1), lines[0].ID)
		assert.Equal(t, uint64(1), lines[0].Cursor)
		assert.JSONEq(t, `{"subject":"Hello"}`, string(lines[0].Attributes))
	}

	// The shared row itself stays clean.
	assert.Zero(t, live.Cursor)
	assert.Nil(t, live.Attributes)
}

func TestSubscribeEmitsHeartbeats(t *testing.T) {
	repo := &fakeTxnRepo{}
	connector := txnusecase.NewConnector()
	u := NewDeltaUsecase(repo, connector, staticInflaters(nil), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := u.Subscribe(ctx, "a1", cursorPtr(0))

	select {
	case raw, ok := <-stream:
		require.True(t, ok)
		assert.Equal(t, []byte("\n"), raw)
	case <-time.After(time.Second):
		t.Fatal("no heartbeat within deadline")
	}
}

func TestSubscribeEndsOnCancel(t *testing.T) {
	repo := &fakeTxnRepo{}
	connector := txnusecase.NewConnector()
	u := NewDeltaUsecase(repo, connector, staticInflaters(nil), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	stream := u.Subscribe(ctx, "a1", cursorPtr(0))
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-stream:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream did not close after cancel")
		}
	}
}

func TestLatestCursor(t *testing.T) {
	repo := &fakeTxnRepo{}
	connector := txnusecase.NewConnector()
	u := NewDeltaUsecase(repo, connector, staticInflaters(nil), time.Minute)

	cursor, err := u.LatestCursor("a1")
	require.NoError(t, err)
	assert.Nil(t, cursor)

	now := time.Now()
	repo.seed("a1", 1, "m1", now)
	repo.seed("a1", 2, "m2", now)

	cursor, err = u.LatestCursor("a1")
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, uint64(2), *cursor)
}
