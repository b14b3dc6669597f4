package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the lifecycle state of a syncback request. Transitions are
// one-directional: NEW -> SUCCEEDED or NEW -> FAILED, never back.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// JSONMap is an opaque JSON object column (task props, failure detail).
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported json map type %T", value)
	}
}

// String returns the string value stored under key, if any.
func (m JSONMap) String(key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// SyncbackRequest is one queued local-to-remote mutation. Requests are
// retained after completion for audit; only the task engine moves them
// out of NEW.
type SyncbackRequest struct {
	ID        string  `json:"id" gorm:"primaryKey;size:36"`
	AccountID string  `json:"account_id" gorm:"index;size:36;not null"`
	Type      string  `json:"type" gorm:"not null"`
	Status    Status  `json:"status" gorm:"default:NEW;not null"`
	Props     JSONMap `json:"props" gorm:"type:json"`
	Error     JSONMap `json:"error,omitempty" gorm:"type:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SyncbackRequest) TableName() string {
	return "syncback_requests"
}
