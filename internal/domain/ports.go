package domain

import (
	"context"
	"io"
)

// AttachmentStore keeps uploaded bytes in transient storage.
type AttachmentStore interface {
	// Acquire persists r under a unique location. On failure nothing is left behind.
	Acquire(ctx context.Context, r io.Reader, name, mimeType string) (*Attachment, error)
	// Release removes the attachment's storage. Safe to call more than once.
	Release(att *Attachment)
}

// AssetUploader uploads an attachment to the provider's file store.
type AssetUploader interface {
	Upload(ctx context.Context, att *Attachment) (RemoteAssetReference, error)
}

// Generator calls the generative model.
type Generator interface {
	Generate(ctx context.Context, req ProviderRequest) (string, error)
}

// HistoryStore is the ordered log of turns of the active conversation.
type HistoryStore interface {
	// Append adds turns in order, atomically with respect to other calls.
	Append(turns ...Turn)
	// Snapshot returns a copy of the stored turns.
	Snapshot() []Turn
	Len() int
	Reset()
}
