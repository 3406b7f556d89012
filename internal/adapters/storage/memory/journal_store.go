package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/PabloGalante/gemini-relay/internal/domain"
)

// JournalStore is a simple in-memory implementation of domain.JournalStore.
// It is NOT persistent and is only suitable for development / local mode.
type JournalStore struct {
	mu      sync.RWMutex
	entries []*domain.ExchangeRecord
}

func NewJournalStore() *JournalStore {
	return &JournalStore{}
}

// AppendExchange saves a new exchange record.
func (s *JournalStore) AppendExchange(_ context.Context, rec *domain.ExchangeRecord) error {
	if rec == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = domain.ExchangeID(uuid.NewString())
	}

	cp := *rec
	s.entries = append(s.entries, &cp)
	return nil
}

// ListExchanges returns the last `limit` records, newest first.
// If limit <= 0, returns all.
func (s *JournalStore) ListExchanges(_ context.Context, limit int) ([]*domain.ExchangeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}

	out := make([]*domain.ExchangeRecord, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *s.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}
