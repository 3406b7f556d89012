package journal

import (
	"context"

	"github.com/PabloGalante/gemini-relay/internal/domain"
)

const defaultLimit = 20

// Service holds the logic of reading the exchange journal.
type Service struct {
	store domain.JournalStore
}

// NewService creates a journal service from a JournalStore.
// store may be nil when journaling is disabled.
func NewService(store domain.JournalStore) *Service {
	return &Service{
		store: store,
	}
}

// RecentExchanges returns the last `limit` exchanges, newest first.
// If limit <= 0, a reasonable default value is used.
func (s *Service) RecentExchanges(ctx context.Context, limit int) ([]*domain.ExchangeRecord, error) {
	if s.store == nil {
		return []*domain.ExchangeRecord{}, nil
	}

	if limit <= 0 {
		limit = defaultLimit
	}

	out, err := s.store.ListExchanges(ctx, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.ExchangeRecord{}
	}
	return out, nil
}
