package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Participant is one (name, email) tuple from an address header.
type Participant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ParticipantList is stored as a JSON column to keep the ordered header
// sequence intact.
type ParticipantList []Participant

func (l ParticipantList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *ParticipantList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported participant list type %T", value)
	}
}

// Emails returns the participant email addresses in header order.
func (l ParticipantList) Emails() []string {
	emails := make([]string, 0, len(l))
	for _, p := range l {
		emails = append(emails, p.Email)
	}
	return emails
}
