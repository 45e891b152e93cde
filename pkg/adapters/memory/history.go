package memory

import (
	"context"
	"sync"

	"github.com/aretw0/asfe/pkg/domain"
)

// HistoryStore implements ports.HistoryStore in memory.
// Safe for concurrent use.
type HistoryStore struct {
	runs map[string][]domain.GatherRun
	mu   sync.RWMutex
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		runs: make(map[string][]domain.GatherRun),
	}
}

// Record appends a copy of the run.
func (s *HistoryStore) Record(ctx context.Context, run domain.GatherRun) error {
	run.Resolved = append([]string(nil), run.Resolved...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.Network] = append(s.runs[run.Network], run)
	return nil
}

// Last returns a copy of the newest run so callers cannot mutate the store.
func (s *HistoryStore) Last(ctx context.Context, network string) (*domain.GatherRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := s.runs[network]
	if len(runs) == 0 {
		return nil, domain.ErrNotFound
	}
	ret := runs[len(runs)-1]
	ret.Resolved = append([]string(nil), ret.Resolved...)
	return &ret, nil
}
