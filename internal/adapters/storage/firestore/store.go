package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/gemini-relay/internal/domain"
)

const exchangesCollection = "exchanges"

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (RELAY_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) exchangesCol() *firestore.CollectionRef {
	return s.client.Collection(exchangesCollection)
}

func (s *Store) exchangeDoc(id domain.ExchangeID) *firestore.DocumentRef {
	return s.exchangesCol().Doc(string(id))
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type exchangeDoc struct {
	Prompt         string    `firestore:"prompt"`
	Response       string    `firestore:"response"`
	Model          string    `firestore:"model"`
	CreatedAt      time.Time `firestore:"created_at"`
	DurationMS     int64     `firestore:"duration_ms"`
	AttachmentName string    `firestore:"attachment_name,omitempty"`
	AttachmentMIME string    `firestore:"attachment_mime,omitempty"`
	AttachmentSize int64     `firestore:"attachment_size,omitempty"`
	AttachmentURI  string    `firestore:"attachment_uri,omitempty"`
}

func toDoc(rec *domain.ExchangeRecord) exchangeDoc {
	return exchangeDoc{
		Prompt:         rec.Prompt,
		Response:       rec.Response,
		Model:          rec.Model,
		CreatedAt:      rec.CreatedAt,
		DurationMS:     rec.DurationMS,
		AttachmentName: rec.AttachmentName,
		AttachmentMIME: rec.AttachmentMIME,
		AttachmentSize: rec.AttachmentSize,
		AttachmentURI:  rec.AttachmentURI,
	}
}

func fromDoc(id string, doc exchangeDoc) *domain.ExchangeRecord {
	return &domain.ExchangeRecord{
		ID:             domain.ExchangeID(id),
		Prompt:         doc.Prompt,
		Response:       doc.Response,
		Model:          doc.Model,
		CreatedAt:      doc.CreatedAt,
		DurationMS:     doc.DurationMS,
		AttachmentName: doc.AttachmentName,
		AttachmentMIME: doc.AttachmentMIME,
		AttachmentSize: doc.AttachmentSize,
		AttachmentURI:  doc.AttachmentURI,
	}
}

// ─────────────────────────────────────────
// JournalStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendExchange(ctx context.Context, rec *domain.ExchangeRecord) error {
	if rec.ID == "" {
		rec.ID = domain.ExchangeID(uuid.NewString())
	}

	_, err := s.exchangeDoc(rec.ID).Create(ctx, toDoc(rec))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("exchange %s already exists", rec.ID)
		}
		return fmt.Errorf("firestore AppendExchange: %w", err)
	}
	return nil
}

func (s *Store) ListExchanges(ctx context.Context, limit int) ([]*domain.ExchangeRecord, error) {
	q := s.exchangesCol().OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []*domain.ExchangeRecord{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListExchanges: %w", err)
		}

		var doc exchangeDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode exchangeDoc: %w", err)
		}

		out = append(out, fromDoc(snap.Ref.ID, doc))
	}
	return out, nil
}
