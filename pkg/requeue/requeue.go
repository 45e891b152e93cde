// Package requeue sends errored tasks of a network back to the queue.
package requeue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/ports"
)

// Result reports one re-queue round trip.
type Result struct {
	// Errored are the tasks found in the error state.
	Errored []domain.ScopedKey
	// Requeued are the tasks the service moved back to waiting.
	Requeued []domain.ScopedKey
	// Status is the network status after the reset.
	Status domain.NetworkStatus
}

// Requeuer resets errored tasks. It never retries; the service's scheduler does.
type Requeuer struct {
	client ports.Client
	logger *slog.Logger
}

// Option configures a Requeuer.
type Option func(*Requeuer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Requeuer) {
		r.logger = logger
	}
}

// New creates a Requeuer.
func New(client ports.Client, opts ...Option) *Requeuer {
	r := &Requeuer{client: client, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Requeue lists the network's errored tasks, sets them to waiting in one call
// and reads back the network status.
func (r *Requeuer) Requeue(ctx context.Context, network domain.ScopedKey) (*Result, error) {
	errored, err := r.client.GetNetworkTasks(ctx, network, domain.TaskError)
	if err != nil {
		return nil, fmt.Errorf("failed to list errored tasks: %w", err)
	}

	res := &Result{Errored: errored}
	if len(errored) > 0 {
		res.Requeued, err = r.client.SetTasksStatus(ctx, errored, domain.TaskWaiting)
		if err != nil {
			return nil, fmt.Errorf("failed to set task status: %w", err)
		}
	}
	r.logger.Info("Requeued errored tasks", "network", network.String(), "errored", len(errored), "requeued", len(res.Requeued))

	res.Status, err = r.client.GetNetworkStatus(ctx, network)
	if err != nil {
		return nil, fmt.Errorf("failed to get network status: %w", err)
	}
	return res, nil
}
