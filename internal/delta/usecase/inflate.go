package usecase

import (
	"encoding/json"

	"localsync-backend/internal/account/repository"
	mailrepo "localsync-backend/internal/mail/repository"
	txndomain "localsync-backend/internal/transaction/domain"
)

// Inflater batch-fetches current entity snapshots for one object type.
// Ids that no longer resolve are simply absent from the result; the
// transaction is still emitted as a tombstone.
type Inflater interface {
	Inflate(accountID string, ids []string) (map[string]json.RawMessage, error)
}

// InflaterFunc adapts a function to the Inflater interface.
type InflaterFunc func(accountID string, ids []string) (map[string]json.RawMessage, error)

func (f InflaterFunc) Inflate(accountID string, ids []string) (map[string]json.RawMessage, error) {
	return f(accountID, ids)
}

// Inflaters is the static mapping from object tag to snapshot source.
// The tag set is closed, so an unknown tag is a programming error and
// inflates to nothing.
type Inflaters map[txndomain.ObjectType]Inflater

// NewInflaters wires the standard registry over the entity repositories.
func NewInflaters(messageRepo mailrepo.MessageRepository, threadRepo mailrepo.ThreadRepository, labelRepo mailrepo.LabelRepository, accountRepo repository.AccountRepository) Inflaters {
	return Inflaters{
		txndomain.ObjectMessage: InflaterFunc(func(accountID string, ids []string) (map[string]json.RawMessage, error) {
			messages, err := messageRepo.FindByIDs(accountID, ids)
			if err != nil {
				return nil, err
			}
			snapshots := make(map[string]json.RawMessage, len(messages))
			for _, m := range messages {
				snapshots[m.ID] = marshal(m)
			}
			return snapshots, nil
		}),
		txndomain.ObjectThread: InflaterFunc(func(accountID string, ids []string) (map[string]json.RawMessage, error) {
			threads, err := threadRepo.FindByIDs(accountID, ids)
			if err != nil {
				return nil, err
			}
			snapshots := make(map[string]json.RawMessage, len(threads))
			for _, t := range threads {
				snapshots[t.ID] = marshal(t)
			}
			return snapshots, nil
		}),
		txndomain.ObjectLabel: InflaterFunc(func(accountID string, ids []string) (map[string]json.RawMessage, error) {
			labels, err := labelRepo.FindByIDs(accountID, ids)
			if err != nil {
				return nil, err
			}
			snapshots := make(map[string]json.RawMessage, len(labels))
			for _, l := range labels {
				snapshots[l.ID] = marshal(l)
			}
			return snapshots, nil
		}),
		txndomain.ObjectAccount: InflaterFunc(func(accountID string, ids []string) (map[string]json.RawMessage, error) {
			snapshots := make(map[string]json.RawMessage, len(ids))
			for _, id := range ids {
				account, err := accountRepo.FindByID(id)
				if err != nil {
					return nil, err
				}
				if account != nil {
					snapshots[id] = marshal(account)
				}
			}
			return snapshots, nil
		}),
	}
}

func marshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// inflate attaches current snapshots to the given transactions, grouped
// by object type so each type costs one batch lookup. Lookup failures
// and missing entities degrade to empty attributes rather than failing
// the stream.
func (reg Inflaters) inflate(accountID string, txns []*txndomain.Transaction) {
	byObject := make(map[txndomain.ObjectType][]*txndomain.Transaction)
	for _, txn := range txns {
		byObject[txn.Object] = append(byObject[txn.Object], txn)
	}

	for object, group := range byObject {
		inflater, ok := reg[object]
		if !ok {
			continue
		}
		ids := make([]string, 0, len(group))
		for _, txn := range group {
			ids = append(ids, txn.ObjectID)
		}
		snapshots, err := inflater.Inflate(accountID, ids)
		if err != nil {
			continue
		}
		for _, txn := range group {
			if snapshot, ok := snapshots[txn.ObjectID]; ok {
				txn.Attributes = snapshot
			}
		}
	}
}
