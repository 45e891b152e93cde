package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/google/uuid"
)

type task struct {
	key            domain.ScopedKey
	network        string
	transformation string
	status         domain.TaskStatus
}

// Client implements ports.Client in memory. Registering a network creates one
// waiting task per transformation. Safe for concurrent use.
type Client struct {
	mu              sync.RWMutex
	networks        map[string]*domain.Network
	transformations map[string]*domain.Transformation
	edges           map[string][]domain.ScopedKey
	results         map[string][]domain.DAGResult
	tasks           map[string]*task
	taskOrder       []string
	err             error
}

// NewClient creates an empty service.
func NewClient() *Client {
	return &Client{
		networks:        make(map[string]*domain.Network),
		transformations: make(map[string]*domain.Transformation),
		edges:           make(map[string][]domain.ScopedKey),
		results:         make(map[string][]domain.DAGResult),
		tasks:           make(map[string]*task),
	}
}

// FailWith makes every following call return err. nil restores normal operation.
func (c *Client) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *Client) CreateNetwork(ctx context.Context, network *domain.Network, scope domain.Scope) (domain.ScopedKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return domain.ScopedKey{}, c.err
	}

	sk, err := domain.NewScopedKey(network.Key(), scope)
	if err != nil {
		return domain.ScopedKey{}, err
	}
	if _, exists := c.networks[sk.String()]; exists {
		return sk, nil
	}
	c.networks[sk.String()] = network

	seen := make(map[string]bool)
	var edges []domain.ScopedKey
	for _, t := range network.Transformations {
		tk, err := domain.NewScopedKey(t.Key(), scope)
		if err != nil {
			return domain.ScopedKey{}, err
		}
		if seen[tk.String()] {
			continue
		}
		seen[tk.String()] = true
		edges = append(edges, tk)
		c.transformations[tk.String()] = t

		taskKey := domain.ScopedKey{
			Qualname: "Task",
			Token:    strings.ReplaceAll(uuid.NewString(), "-", ""),
			Scope:    scope,
		}
		c.tasks[taskKey.String()] = &task{key: taskKey, network: sk.String(), transformation: tk.String(), status: domain.TaskWaiting}
		c.taskOrder = append(c.taskOrder, taskKey.String())
	}
	c.edges[sk.String()] = edges
	return sk, nil
}

func (c *Client) GetNetwork(ctx context.Context, network domain.ScopedKey) (*domain.Network, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	n, ok := c.networks[network.String()]
	if !ok {
		return nil, fmt.Errorf("network %s: %w", network, domain.ErrNotFound)
	}
	return n, nil
}

func (c *Client) GetNetworkTransformations(ctx context.Context, network domain.ScopedKey) ([]domain.ScopedKey, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	edges, ok := c.edges[network.String()]
	if !ok {
		return nil, fmt.Errorf("network %s: %w", network, domain.ErrNotFound)
	}
	return append([]domain.ScopedKey(nil), edges...), nil
}

func (c *Client) GetTransformation(ctx context.Context, transformation domain.ScopedKey) (*domain.Transformation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	t, ok := c.transformations[transformation.String()]
	if !ok {
		return nil, fmt.Errorf("transformation %s: %w", transformation, domain.ErrNotFound)
	}
	return t, nil
}

func (c *Client) GetTransformationResults(ctx context.Context, transformation domain.ScopedKey, withDAGResults bool) ([]domain.DAGResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	if _, ok := c.transformations[transformation.String()]; !ok {
		return nil, fmt.Errorf("transformation %s: %w", transformation, domain.ErrNotFound)
	}

	stored := c.results[transformation.String()]
	out := make([]domain.DAGResult, len(stored))
	for i, r := range stored {
		out[i] = domain.DAGResult{Key: r.Key}
		if withDAGResults {
			out[i].UnitResults = append([]domain.UnitResult(nil), r.UnitResults...)
		}
	}
	return out, nil
}

func (c *Client) GetNetworkTasks(ctx context.Context, network domain.ScopedKey, status domain.TaskStatus) ([]domain.ScopedKey, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	if _, ok := c.networks[network.String()]; !ok {
		return nil, fmt.Errorf("network %s: %w", network, domain.ErrNotFound)
	}
	var out []domain.ScopedKey
	for _, id := range c.taskOrder {
		t := c.tasks[id]
		if t.network == network.String() && t.status == status {
			out = append(out, t.key)
		}
	}
	return out, nil
}

// SetTasksStatus applies the transitions the service allows: finished,
// invalid and deleted tasks keep their status and are left out of the result.
func (c *Client) SetTasksStatus(ctx context.Context, tasks []domain.ScopedKey, status domain.TaskStatus) ([]domain.ScopedKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	var accepted []domain.ScopedKey
	for _, k := range tasks {
		t, ok := c.tasks[k.String()]
		if !ok {
			continue
		}
		switch t.status {
		case domain.TaskComplete, domain.TaskInvalid, domain.TaskDeleted:
			if t.status != status {
				continue
			}
		}
		t.status = status
		accepted = append(accepted, k)
	}
	return accepted, nil
}

func (c *Client) GetNetworkStatus(ctx context.Context, network domain.ScopedKey) (domain.NetworkStatus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	if _, ok := c.networks[network.String()]; !ok {
		return nil, fmt.Errorf("network %s: %w", network, domain.ErrNotFound)
	}
	status := make(domain.NetworkStatus)
	for _, t := range c.tasks {
		if t.network == network.String() {
			status[t.status]++
		}
	}
	return status, nil
}

// AddResult stores a finished repeat for a transformation.
func (c *Client) AddResult(transformation domain.ScopedKey, result domain.DAGResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.transformations[transformation.String()]; !ok {
		return fmt.Errorf("transformation %s: %w", transformation, domain.ErrNotFound)
	}
	if result.Key == "" {
		result.Key = "ProtocolDAGResultRef-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	c.results[transformation.String()] = append(c.results[transformation.String()], result)
	return nil
}

// SetTaskStatus forces a status, as the service's workers would.
func (c *Client) SetTaskStatus(taskKey domain.ScopedKey, status domain.TaskStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[taskKey.String()]
	if !ok {
		return fmt.Errorf("task %s: %w", taskKey, domain.ErrNotFound)
	}
	t.status = status
	return nil
}

// Tasks lists every task of a network in creation order.
func (c *Client) Tasks(network domain.ScopedKey) []domain.ScopedKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.ScopedKey
	for _, id := range c.taskOrder {
		if t := c.tasks[id]; t.network == network.String() {
			out = append(out, t.key)
		}
	}
	return out
}
