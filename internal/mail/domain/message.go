package domain

import "time"

// Message is a synced mail message. The ingestion pipeline owns the
// row; the sync core reads it for thread matching, syncback execution
// and delta inflation.
type Message struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	AccountID string `json:"account_id" gorm:"index;size:36;not null"`
	ThreadID  string `json:"thread_id" gorm:"index;size:36"`

	// MessageID is the RFC 5322 Message-Id header, used to resolve
	// reply chains via References.
	MessageID string `json:"message_id" gorm:"index"`

	Subject string          `json:"subject"`
	From    ParticipantList `json:"from" gorm:"type:json"`
	To      ParticipantList `json:"to" gorm:"type:json"`
	Cc      ParticipantList `json:"cc" gorm:"type:json"`
	Bcc     ParticipantList `json:"bcc" gorm:"type:json"`

	// References holds the message ids of the reply chain, most recent
	// last, space separated as on the wire.
	References string `json:"references"`
	// ProviderThreadID is the provider-native conversation id
	// (Gmail's X-GM-THRID) when the provider exposes one.
	ProviderThreadID string `json:"provider_thread_id" gorm:"index"`

	// Folder and FolderImapUID address the message on the remote store.
	Folder        string `json:"folder"`
	FolderImapUID uint32 `json:"folder_imap_uid"`

	Unread  bool `json:"unread" gorm:"default:true"`
	Starred bool `json:"starred" gorm:"default:false"`

	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
