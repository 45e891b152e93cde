package ports

import (
	"context"

	"github.com/aretw0/asfe/pkg/domain"
)

// HistoryStore remembers gatherer runs per network.
type HistoryStore interface {
	// Record appends a run.
	Record(ctx context.Context, run domain.GatherRun) error

	// Last returns the most recent run for a network.
	// Returns domain.ErrNotFound if the network has no recorded runs.
	Last(ctx context.Context, network string) (*domain.GatherRun, error)
}
