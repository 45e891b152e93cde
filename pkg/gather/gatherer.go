package gather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/ports"
	"github.com/google/uuid"
)

// Row is one transformation of the report.
type Row struct {
	Name           string
	Transformation domain.ScopedKey
	// Repeats is the number of finished repeats the service returned.
	Repeats int
	Aggregate
}

// Report is the outcome of one gatherer run.
type Report struct {
	ID        string
	Network   domain.ScopedKey
	Timestamp time.Time
	Rows      []Row
	// NewlyResolved names transformations that had no estimate in the previous
	// recorded run. Empty without a history store.
	NewlyResolved []string
}

// Complete counts rows with an estimate.
func (r *Report) Complete() int {
	n := 0
	for _, row := range r.Rows {
		if row.Estimate != nil {
			n++
		}
	}
	return n
}

// Absent counts rows without an estimate.
func (r *Report) Absent() int {
	return len(r.Rows) - r.Complete()
}

// Excluded sums failed units across rows.
func (r *Report) Excluded() int {
	n := 0
	for _, row := range r.Rows {
		n += row.Excluded
	}
	return n
}

// Gatherer fetches and aggregates the results of a network.
type Gatherer struct {
	client  ports.Client
	history ports.HistoryStore
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Gatherer.
type Option func(*Gatherer)

// WithLogger sets the gatherer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gatherer) {
		g.logger = logger
	}
}

// WithHistory reports progress since the previous recorded run. Runs are
// recorded by Record.
func WithHistory(store ports.HistoryStore) Option {
	return func(g *Gatherer) {
		g.history = store
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gatherer) {
		g.now = now
	}
}

// New creates a Gatherer.
func New(client ports.Client, opts ...Option) *Gatherer {
	g := &Gatherer{
		client: client,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Gather walks the network's transformations in service order. A failed
// remote call aborts the run; a transformation without results is a row
// without an estimate.
func (g *Gatherer) Gather(ctx context.Context, networkKey domain.ScopedKey) (*Report, error) {
	edges, err := g.client.GetNetworkTransformations(ctx, networkKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list transformations: %w", err)
	}
	g.logger.Info("Gathering results", "network", networkKey.String(), "transformations", len(edges))

	report := &Report{
		ID:        uuid.NewString(),
		Network:   networkKey,
		Timestamp: g.now().UTC(),
		Rows:      make([]Row, 0, len(edges)),
	}

	for _, sk := range edges {
		t, err := g.client.GetTransformation(ctx, sk)
		if err != nil {
			return nil, fmt.Errorf("failed to get transformation %s: %w", sk, err)
		}
		results, err := g.client.GetTransformationResults(ctx, sk, true)
		if err != nil {
			return nil, fmt.Errorf("failed to get results of %s: %w", sk, err)
		}
		agg, err := AggregateResults(results)
		if err != nil {
			return nil, fmt.Errorf("transformation %s (%s): %w", t.Name, sk, err)
		}
		if agg.Excluded > 0 {
			g.logger.Debug("Excluded failed units", "transformation", t.Name, "excluded", agg.Excluded)
		}
		report.Rows = append(report.Rows, Row{
			Name:           t.Name,
			Transformation: sk,
			Repeats:        len(results),
			Aggregate:      agg,
		})
	}

	if g.history != nil {
		if err := g.compare(ctx, report); err != nil {
			return nil, err
		}
	}

	g.logger.Info("Gathered results", "complete", report.Complete(), "absent", report.Absent(), "excluded_units", report.Excluded())
	return report, nil
}

// compare fills report.NewlyResolved from the last recorded run.
func (g *Gatherer) compare(ctx context.Context, report *Report) error {
	prev, err := g.history.Last(ctx, report.Network.String())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to read history: %w", err)
	}

	before := make(map[string]bool, len(prev.Resolved))
	for _, k := range prev.Resolved {
		before[k] = true
	}
	for _, row := range report.Rows {
		if row.Estimate == nil {
			continue
		}
		if key := row.Transformation.String(); !before[key] {
			report.NewlyResolved = append(report.NewlyResolved, row.Name)
			g.logger.Info("Transformation resolved since last run", "transformation", row.Name, "key", key)
		}
	}
	return nil
}

// Record stores report as the latest run of its network. Callers record only
// once the report's outputs are safely written, so a failed write is reported
// as new again next time. It is a no-op without a history store.
func (g *Gatherer) Record(ctx context.Context, report *Report) error {
	if g.history == nil {
		return nil
	}
	run := domain.GatherRun{
		ID:        report.ID,
		Network:   report.Network.String(),
		Timestamp: report.Timestamp,
		Absent:    report.Absent(),
		Resolved:  []string{},
	}
	for _, row := range report.Rows {
		if row.Estimate != nil {
			run.Resolved = append(run.Resolved, row.Transformation.String())
		}
	}
	if err := g.history.Record(ctx, run); err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}
