package usecase

import (
	"sync"

	txndomain "localsync-backend/internal/transaction/domain"
)

const listenerBuffer = 256

// Listener receives committed transactions for one account, in append
// order. C is closed when the listener falls too far behind; the client
// recovers by reconnecting with its last cursor.
type Listener struct {
	C chan *txndomain.Transaction

	connector *Connector
	accountID string
	closed    bool
}

// Close unregisters the listener and releases its channel. Safe to call
// after the connector already dropped the listener for lagging.
func (l *Listener) Close() {
	l.connector.unsubscribe(l)
}

// Connector fans committed transactions out to the live-tail listeners
// of each account. It holds no history; catch-up reads the log directly.
type Connector struct {
	mu        sync.Mutex
	listeners map[string]map[*Listener]struct{}
}

func NewConnector() *Connector {
	return &Connector{
		listeners: make(map[string]map[*Listener]struct{}),
	}
}

// Subscribe registers a live-tail listener for the account.
func (c *Connector) Subscribe(accountID string) *Listener {
	l := &Listener{
		C:         make(chan *txndomain.Transaction, listenerBuffer),
		connector: c,
		accountID: accountID,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listeners[accountID] == nil {
		c.listeners[accountID] = make(map[*Listener]struct{})
	}
	c.listeners[accountID][l] = struct{}{}
	return l
}

func (c *Connector) unsubscribe(l *Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked(l)
}

func (c *Connector) dropLocked(l *Listener) {
	if l.closed {
		return
	}
	l.closed = true
	delete(c.listeners[l.accountID], l)
	if len(c.listeners[l.accountID]) == 0 {
		delete(c.listeners, l.accountID)
	}
	close(l.C)
}

// Publish delivers committed transactions to every listener of the
// account. A listener whose buffer is full would otherwise force us to
// drop individual transactions and break the no-gap guarantee, so the
// whole listener is dropped instead; its consumer resumes from cursor.
func (c *Connector) Publish(accountID string, txns []*txndomain.Transaction) {
	if len(txns) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for l := range c.listeners[accountID] {
		for _, txn := range txns {
			select {
			case l.C <- txn:
			default:
				c.dropLocked(l)
			}
			if l.closed {
				break
			}
		}
	}
}
