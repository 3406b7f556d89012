package domain

import (
	"context"
	"time"
)

// ExchangeRecord is an audit entry for one successful generate request.
// It is written after the fact and never read back into the conversation.
type ExchangeRecord struct {
	ID        ExchangeID `json:"id"`
	Prompt    string     `json:"prompt"`
	Response  string     `json:"response"`
	Model     string     `json:"model"`
	CreatedAt time.Time  `json:"created_at"`

	DurationMS int64 `json:"duration_ms"`

	// Attachment metadata, empty when the request carried no file.
	AttachmentName string `json:"attachment_name,omitempty"`
	AttachmentMIME string `json:"attachment_mime,omitempty"`
	AttachmentSize int64  `json:"attachment_size,omitempty"`
	AttachmentURI  string `json:"attachment_uri,omitempty"`
}

// JournalStore defines the minimum operations to persist exchange records.
type JournalStore interface {
	AppendExchange(ctx context.Context, rec *ExchangeRecord) error
	ListExchanges(ctx context.Context, limit int) ([]*ExchangeRecord, error)
}
