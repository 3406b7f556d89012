package memory

import (
	"sync"

	"github.com/PabloGalante/gemini-relay/internal/domain"
)

// HistoryStore is the process-wide conversation history.
type HistoryStore struct {
	mu    sync.RWMutex
	turns []domain.Turn
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

func (s *HistoryStore) Append(turns ...domain.Turn) {
	if len(turns) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range turns {
		s.turns = append(s.turns, t.Clone())
	}
}

func (s *HistoryStore) Snapshot() []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Turn, len(s.turns))
	for i, t := range s.turns {
		out[i] = t.Clone()
	}
	return out
}

func (s *HistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

func (s *HistoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}
