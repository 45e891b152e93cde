package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/asfe/pkg/domain"
)

// HistoryStore implements ports.HistoryStore with one JSON file per network.
type HistoryStore struct {
	BasePath string
	mu       sync.Mutex
}

// NewHistoryStore creates a store rooted at basePath.
// If basePath is empty, it defaults to ".asfe/history".
func NewHistoryStore(basePath string) *HistoryStore {
	if basePath == "" {
		basePath = filepath.Join(".asfe", "history")
	}
	return &HistoryStore{BasePath: basePath}
}

func (s *HistoryStore) path(network string) string {
	// Scoped keys only contain [A-Za-z0-9_-]; anything else is flattened.
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, network)
	return filepath.Join(s.BasePath, name+".json")
}

func (s *HistoryStore) load(network string) ([]domain.GatherRun, error) {
	data, err := os.ReadFile(s.path(network))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	var runs []domain.GatherRun
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return runs, nil
}

// Record appends a run and rewrites the network's file atomically.
func (s *HistoryStore) Record(ctx context.Context, run domain.GatherRun) error {
	if run.Network == "" {
		return fmt.Errorf("run network cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.load(run.Network)
	if err != nil {
		return err
	}
	runs = append(runs, run)

	return WriteAtomic(s.path(run.Network), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(runs); err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		return nil
	})
}

// Last returns the most recent run of a network.
func (s *HistoryStore) Last(ctx context.Context, network string) (*domain.GatherRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.load(network)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, domain.ErrNotFound
	}
	last := runs[len(runs)-1]
	return &last, nil
}
