package domain

import "time"

// Thread is one conversation. Threads are created lazily by the
// matcher and only ever grow; MessageCount is maintained in the same
// unit of work as the message rows so the cap check never races.
type Thread struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	AccountID string `json:"account_id" gorm:"index;size:36;not null"`

	// CleanedSubject is the subject with reply/forward prefixes
	// stripped, the key for heuristic matching.
	CleanedSubject string `json:"cleaned_subject" gorm:"index"`
	// ProviderThreadID mirrors the provider-native conversation id.
	// When present it takes precedence over heuristic matching.
	ProviderThreadID string `json:"provider_thread_id" gorm:"index"`

	MessageCount int       `json:"message_count" gorm:"default:0"`
	Messages     []Message `json:"messages,omitempty" gorm:"foreignKey:ThreadID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
