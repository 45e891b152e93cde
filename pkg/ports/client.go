package ports

import (
	"context"

	"github.com/aretw0/asfe/pkg/domain"
)

// Client is the remote execution service. The tools only call it; task
// scheduling and retries happen on the service side.
type Client interface {
	// CreateNetwork registers a network under a scope and returns its scoped key.
	CreateNetwork(ctx context.Context, network *domain.Network, scope domain.Scope) (domain.ScopedKey, error)

	// GetNetwork reads back a registered network.
	GetNetwork(ctx context.Context, network domain.ScopedKey) (*domain.Network, error)

	// GetNetworkTransformations lists the transformations of a network.
	GetNetworkTransformations(ctx context.Context, network domain.ScopedKey) ([]domain.ScopedKey, error)

	// GetTransformation reads one transformation.
	GetTransformation(ctx context.Context, transformation domain.ScopedKey) (*domain.Transformation, error)

	// GetTransformationResults returns one entry per finished repeat.
	// When withDAGResults is false only the result keys are populated.
	GetTransformationResults(ctx context.Context, transformation domain.ScopedKey, withDAGResults bool) ([]domain.DAGResult, error)

	// GetNetworkTasks lists the tasks of a network in the given status.
	GetNetworkTasks(ctx context.Context, network domain.ScopedKey, status domain.TaskStatus) ([]domain.ScopedKey, error)

	// SetTasksStatus requests a status transition for each task.
	// It returns the keys the service accepted.
	SetTasksStatus(ctx context.Context, tasks []domain.ScopedKey, status domain.TaskStatus) ([]domain.ScopedKey, error)

	// GetNetworkStatus counts the network's tasks per status.
	GetNetworkStatus(ctx context.Context, network domain.ScopedKey) (domain.NetworkStatus, error)
}
