// Package redis stores gatherer history in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/asfe/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// HistoryStore implements ports.HistoryStore with one Redis list per network,
// newest run first.
type HistoryStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	limit  int64
}

type Option func(*HistoryStore)

// WithTTL expires a network's history after ttl without new runs.
func WithTTL(ttl time.Duration) Option {
	return func(s *HistoryStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *HistoryStore) {
		s.prefix = prefix
	}
}

// WithLimit keeps at most n runs per network. 0 keeps everything.
func WithLimit(n int) Option {
	return func(s *HistoryStore) {
		s.limit = int64(n)
	}
}

// New creates a store with its own client.
func New(address, password string, db int, opts ...Option) *HistoryStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromURL creates a store from a redis:// URL.
func NewFromURL(url string, opts ...Option) (*HistoryStore, error) {
	o, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(o), opts...), nil
}

// NewFromClient creates a store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *HistoryStore {
	store := &HistoryStore{
		client: client,
		prefix: "asfe:history:",
		limit:  100,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *HistoryStore) key(network string) string {
	return s.prefix + network
}

// Record pushes a run onto the network's list.
func (s *HistoryStore) Record(ctx context.Context, run domain.GatherRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	key := s.key(run.Network)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	if s.limit > 0 {
		pipe.LTrim(ctx, key, 0, s.limit-1)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Last returns the newest run of a network.
func (s *HistoryStore) Last(ctx context.Context, network string) (*domain.GatherRun, error) {
	val, err := s.client.LIndex(ctx, s.key(network), 0).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var run domain.GatherRun
	if err := json.Unmarshal([]byte(val), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

// Close closes the redis client.
func (s *HistoryStore) Close() error {
	return s.client.Close()
}
