package domain

import (
	"encoding/json"
	"time"
)

// ObjectType tags which kind of entity a transaction refers to. The set
// is closed; inflation resolves each tag through a static registry.
type ObjectType string

const (
	ObjectMessage ObjectType = "message"
	ObjectThread  ObjectType = "thread"
	ObjectLabel   ObjectType = "label"
	ObjectAccount ObjectType = "account"
)

// EventType describes what happened to the referenced entity.
type EventType string

const (
	EventCreate EventType = "create"
	EventModify EventType = "modify"
	EventDelete EventType = "delete"
)

// Transaction is one immutable entry of the per-account change log.
// ID is a per-account counter assigned at append time and doubles as
// the resumable cursor handed to streaming clients.
type Transaction struct {
	AccountID string     `json:"accountId" gorm:"primaryKey;size:36"`
	ID        uint64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Object    ObjectType `json:"object" gorm:"size:16;not null"`
	ObjectID  string     `json:"objectId" gorm:"size:36;index;not null"`
	Event     EventType  `json:"event" gorm:"size:16;not null"`
	CreatedAt time.Time  `json:"createdAt"`

	// Cursor mirrors ID on the wire so clients don't need to know the
	// two are the same value.
	Cursor uint64 `json:"cursor" gorm:"-"`
	// Attributes carries the entity snapshot attached during inflation,
	// just before emission. Never persisted.
	Attributes json.RawMessage `json:"attributes,omitempty" gorm:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
